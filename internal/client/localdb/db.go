// Package localdb opens the client's local SQLite database and brings its
// schema up to date with the embedded goose migrations.
package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/migrations"
	"github.com/dmitrijs2005/testimonykeeper/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "client.db"

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite database at dsn and
// applies migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Open creates dataDir if necessary and initializes FileName inside it.
func Open(ctx context.Context, dataDir string) (*sql.DB, error) {
	dir, err := filex.EnsureSubdDir(dataDir)
	if err != nil {
		return nil, err
	}
	return InitDatabase(ctx, filepath.Join(dir, FileName))
}
