package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/cache"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/session"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/upload"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
	"github.com/dmitrijs2005/testimonykeeper/internal/testutil/fakeapi"
	"github.com/stretchr/testify/require"
)

type note struct {
	Level Level
	Msg   string
}

type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) Notify(ctx context.Context, level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{level, msg})
}

func (r *recorder) all() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...)
}

func (r *recorder) last() note {
	n := r.all()
	if len(n) == 0 {
		return note{}
	}
	return n[len(n)-1]
}

type env struct {
	srv         *fakeapi.Server
	sess        *session.Session
	client      *client.HTTPClient
	cache       *cache.Memory
	notes       *recorder
	auth        AuthService
	testimonies TestimonyService
	submissions SubmissionService
}

func newEnv(t *testing.T, inline bool) *env {
	t.Helper()
	log := logging.Discard()

	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	sess := session.New(nil, 0, log)
	c, err := client.NewHTTPClient(srv.URL, sess, log, client.Timeouts{})
	require.NoError(t, err)

	qc := cache.NewMemory()
	notes := &recorder{}
	ts := NewTestimonyService(c, sess, qc, time.Minute, notes, log)
	up := upload.New(c, log, upload.WithRetryBase(time.Millisecond))

	e := &env{
		srv:         srv,
		sess:        sess,
		client:      c,
		cache:       qc,
		notes:       notes,
		auth:        NewAuthService(c, sess, qc, log),
		testimonies: ts,
		submissions: NewSubmissionService(ts, up, notes, log, inline),
	}
	t.Cleanup(func() { _ = e.auth.Close(context.Background()) })
	return e
}

// login registers ada@example.com on the fake and installs her token.
func (e *env) login(t *testing.T) {
	t.Helper()
	token := e.srv.AddUser("ada@example.com", "secret", "Ada")
	require.NoError(t, e.sess.Set(context.Background(), token))
}
