package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/cache"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/config"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/localdb"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/services"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/session"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/upload"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// cacheNamespace prefixes every Redis key written by the CLI.
const cacheNamespace = "testimonykeeper:"

type App struct {
	config      *config.Config
	authService services.AuthService
	testimonies services.TestimonyService
	submissions services.SubmissionService
	session     *session.Session
	log         logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	Mode Mode
	user *models.User

	db *sql.DB
}

// NewApp opens local storage, restores the saved session and wires the API
// client, query cache, uploader and services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := localdb.Open(ctx, c.DataDir)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	sess := session.New(session.NewMetadataStore(db), c.SessionTTL, log)
	if err := sess.Restore(ctx); err != nil {
		log.Warn(ctx, "could not restore session", "error", err)
	}

	apiClient, err := client.NewHTTPClient(c.APIBaseURL, sess, log, client.Timeouts{
		Request:     c.RequestTimeout,
		Submit:      c.SubmitTimeout,
		ImageUpload: c.ImageUploadTimeout,
		AudioUpload: c.AudioUploadTimeout,
		VideoUpload: c.VideoUploadTimeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	out := io.Writer(os.Stdout)
	notifier := printNotifier{w: out}
	qc := newCache(ctx, c, log)
	uploader := upload.New(apiClient, log, upload.WithConcurrency(c.UploadConcurrency))
	ts := services.NewTestimonyService(apiClient, sess, qc, c.CacheTTL, notifier, log)

	a := &App{
		config:      c,
		authService: services.NewAuthService(apiClient, sess, qc, log),
		testimonies: ts,
		submissions: services.NewSubmissionService(ts, uploader, notifier, log, c.InlineMedia),
		session:     sess,
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
		out:         out,
		db:          db,
	}
	sess.OnInvalidated(a.sessionInvalidated(qc))
	return a, nil
}

// sessionInvalidated forgets the user and every cached testimony query once
// the server rejects the token.
func (a *App) sessionInvalidated(qc cache.Cache) func(ctx context.Context) {
	return func(ctx context.Context) {
		a.setUser(nil)
		if err := qc.InvalidatePrefix(ctx, services.CachePrefix); err != nil {
			a.log.Warn(ctx, "cache invalidation failed", "error", err)
		}
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	}
}

// newCache returns the Redis cache when one is configured and reachable,
// else an in-process cache.
func newCache(ctx context.Context, c *config.Config, log logging.Logger) cache.Cache {
	if c.RedisAddr == "" {
		return cache.NewMemory()
	}
	r, err := cache.NewRedis(ctx, c.RedisAddr, "", 0, cacheNamespace)
	if err != nil {
		log.Warn(ctx, "redis unavailable, using in-memory cache", "addr", c.RedisAddr, "error", err)
		return cache.NewMemory()
	}
	return r
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) setUser(u *models.User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *App) currentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

// Close releases the API client, cache and local database.
func (a *App) Close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "closing services", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(ctx, "closing local database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.Authenticated()
}

// StartOnlineStatusWatcher pings the API every interval and flips Mode
// between online and offline until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.checkOnline(ctx)
	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
