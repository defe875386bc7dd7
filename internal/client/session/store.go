package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/testimonykeeper/internal/dbx"
)

// MetadataStore keeps the token and login time in the local metadata table.
type MetadataStore struct {
	db *sql.DB
}

func NewMetadataStore(db *sql.DB) *MetadataStore {
	return &MetadataStore{db: db}
}

func (m *MetadataStore) Save(ctx context.Context, token string, loginTime time.Time) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyAuthToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyLastLoginTime, []byte(loginTime.UTC().Format(time.RFC3339Nano)))
	})
}

func (m *MetadataStore) Load(ctx context.Context) (string, time.Time, error) {
	repo := metadata.NewSQLiteRepository(m.db)

	token, err := repo.Get(ctx, metadata.KeyAuthToken)
	if err != nil {
		return "", time.Time{}, err
	}
	raw, err := repo.Get(ctx, metadata.KeyLastLoginTime)
	if err != nil {
		return "", time.Time{}, err
	}

	var loginTime time.Time
	if len(raw) > 0 {
		loginTime, err = time.Parse(time.RFC3339Nano, string(raw))
		if err != nil {
			return "", time.Time{}, fmt.Errorf("parse last login time: %w", err)
		}
	}
	return string(token), loginTime, nil
}

func (m *MetadataStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(m.db).Delete(ctx, metadata.KeyAuthToken, metadata.KeyLastLoginTime)
}
