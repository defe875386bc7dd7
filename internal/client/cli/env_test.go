package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/cache"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/config"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/services"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/session"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/upload"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
	"github.com/dmitrijs2005/testimonykeeper/internal/testutil/fakeapi"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "secret"
)

// newTestApp wires an App against a fake API. input feeds every prompt.
func newTestApp(t *testing.T, input string) (*App, *fakeapi.Server, *bytes.Buffer) {
	t.Helper()
	log := logging.Discard()

	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	sess := session.New(nil, 0, log)
	c, err := client.NewHTTPClient(srv.URL, sess, log, client.Timeouts{})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	qc := cache.NewMemory()
	n := printNotifier{w: out}
	ts := services.NewTestimonyService(c, sess, qc, time.Minute, n, log)
	up := upload.New(c, log, upload.WithRetryBase(time.Millisecond))

	a := &App{
		config:      &config.Config{APIBaseURL: srv.URL, OnlineCheckInterval: time.Hour},
		authService: services.NewAuthService(c, sess, qc, log),
		testimonies: ts,
		submissions: services.NewSubmissionService(ts, up, n, log, false),
		session:     sess,
		log:         log,
		reader:      bufio.NewReader(strings.NewReader(input)),
		out:         out,
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a, srv, out
}

// loginAs registers the test account on the fake and installs its token.
func loginAs(t *testing.T, a *App, srv *fakeapi.Server) {
	t.Helper()
	token := srv.AddUser(testEmail, testPassword, "Ada")
	require.NoError(t, a.session.Set(context.Background(), token))
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = strings.TrimSpace(toString(v))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case error:
		return s.Error()
	}
	return ""
}

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}
