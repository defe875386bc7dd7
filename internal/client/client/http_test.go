package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/session"
	"github.com/dmitrijs2005/testimonykeeper/internal/filex"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
	"github.com/dmitrijs2005/testimonykeeper/internal/netx"
	"github.com/dmitrijs2005/testimonykeeper/internal/testutil/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, sess *session.Session, timeouts Timeouts) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(baseURL, sess, logging.Discard(), timeouts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newFake(t *testing.T) *fakeapi.Server {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	return srv
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.com", nil, logging.Discard(), Timeouts{})
	assert.Error(t, err)

	_, err = NewHTTPClient("://", nil, logging.Discard(), Timeouts{})
	assert.Error(t, err)

	c, err := NewHTTPClient("http://localhost:8000/", nil, logging.Discard(), Timeouts{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.baseURL)
	assert.Equal(t, DefaultTimeouts(), c.timeouts)
}

func TestLoginAndMe_InjectsBearerAndRequestID(t *testing.T) {
	srv := newFake(t)
	srv.AddUser("ada@example.com", "pw", "Ada")

	sess := session.New(nil, 0, logging.Discard())
	c := newTestClient(t, srv.URL, sess, Timeouts{})
	ctx := context.Background()

	resp, err := c.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NoError(t, sess.Set(ctx, resp.AccessToken))

	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FullName)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Auth)
	assert.Equal(t, "Bearer "+resp.AccessToken, reqs[1].Auth)
	assert.NotEmpty(t, reqs[0].RequestID)
	assert.NotEqual(t, reqs[0].RequestID, reqs[1].RequestID)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := newFake(t)
	srv.AddUser("ada@example.com", "pw", "Ada")
	c := newTestClient(t, srv.URL, nil, Timeouts{})

	_, err := c.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "nope"})
	require.ErrorIs(t, err, ErrUnauthorized)

	msg, ok := MessageFrom(err)
	assert.True(t, ok)
	assert.Equal(t, "Invalid credentials", msg)
}

func TestSignup_ArrayMessageJoined(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv.URL, nil, Timeouts{})

	_, err := c.Signup(context.Background(), models.SignupRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "email should not be empty; password should not be empty", apiErr.Message)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestGoogleCallback(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv.URL, nil, Timeouts{})
	ctx := context.Background()

	resp, err := c.GoogleCallback(ctx, fakeapi.GoogleCode)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = c.GoogleCallback(ctx, "bogus")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.GoogleCallback(ctx, "  ")
	assert.Error(t, err)
}

func TestUnauthorized_InvalidatesCurrentSession(t *testing.T) {
	srv := newFake(t)
	token := srv.AddUser("ada@example.com", "pw", "Ada")

	sess := session.New(nil, 0, logging.Discard())
	var calls atomic.Int32
	sess.OnInvalidated(func(ctx context.Context) { calls.Add(1) })

	ctx := context.Background()
	require.NoError(t, sess.Set(ctx, token))

	c := newTestClient(t, srv.URL, sess, Timeouts{})
	srv.RevokeTokens()

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	tok, _ := sess.Token()
	assert.Empty(t, tok)
	assert.EqualValues(t, 1, calls.Load())

	// A second 401 without a session does nothing more.
	_, err = c.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 1, calls.Load())
}

func TestUnauthorized_StaleGenerationKeepsNewSession(t *testing.T) {
	srv := newFake(t)
	oldToken := srv.AddUser("ada@example.com", "pw", "Ada")
	newToken := srv.AddUser("bob@example.com", "pw", "Bob")

	arrived := make(chan struct{})
	release := make(chan struct{})
	srv.Override(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	})

	sess := session.New(nil, 0, logging.Discard())
	ctx := context.Background()
	require.NoError(t, sess.Set(ctx, oldToken))

	c := newTestClient(t, srv.URL, sess, Timeouts{})

	done := make(chan error, 1)
	go func() {
		_, err := c.Me(ctx)
		done <- err
	}()

	<-arrived
	require.NoError(t, sess.Set(ctx, newToken))
	close(release)

	require.ErrorIs(t, <-done, ErrUnauthorized)
	tok, _ := sess.Token()
	assert.Equal(t, newToken, tok)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		target  error
		message string
	}{
		{"not found", http.StatusNotFound, `{"message":"Testimony not found"}`, ErrNotFound, "Testimony not found"},
		{"forbidden", http.StatusForbidden, `{"message":"Forbidden"}`, ErrUnauthorized, "Forbidden"},
		{"server error", http.StatusBadGateway, `<html>bad gateway</html>`, ErrUnavailable, ""},
		{"detail fallback", http.StatusInternalServerError, `{"detail":"db down"}`, ErrUnavailable, "db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, nil, Timeouts{})
			_, err := c.GetTestimony(context.Background(), 7)

			require.ErrorIs(t, err, tt.target)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestNetworkErrors_MapToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, nil, Timeouts{})
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, netx.IsNetworkError(err))
}

func TestTimeout_MapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil, Timeouts{Request: 50 * time.Millisecond})
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, netx.IsTimeout(err))
}

func TestCanceledContext_NotMapped(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv.URL, nil, Timeouts{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Ping(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestPing(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv.URL, nil, Timeouts{})
	require.NoError(t, c.Ping(context.Background()))

	srv.Override(http.MethodGet, "/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"degraded"}`))
	})
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestListTestimonies_SendsFilterAndReadsEnvelope(t *testing.T) {
	srv := newFake(t)
	for i := 0; i < 3; i++ {
		srv.Seed(models.Testimony{SubmissionType: models.SubmissionWritten, EventTitle: "River crossing"}, "")
	}
	srv.Seed(models.Testimony{SubmissionType: models.SubmissionAudio, EventTitle: "Harbor"}, "")

	c := newTestClient(t, srv.URL, nil, Timeouts{})
	page, err := c.ListTestimonies(context.Background(), models.TestimonyFilter{
		Search: "river",
		Page:   models.PageFor(2, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Items[0].ID)
}

func TestGetDrafts_BothShapes(t *testing.T) {
	for _, envelope := range []bool{false, true} {
		srv := newFake(t)
		token := srv.AddUser("ada@example.com", "pw", "Ada")
		srv.Seed(models.Testimony{SubmissionType: models.SubmissionWritten, IsDraft: true}, "ada@example.com")
		srv.Seed(models.Testimony{SubmissionType: models.SubmissionWritten}, "ada@example.com")
		srv.DraftsEnvelope = envelope

		sess := session.New(nil, 0, logging.Discard())
		require.NoError(t, sess.Set(context.Background(), token))

		c := newTestClient(t, srv.URL, sess, Timeouts{})
		items, err := c.GetDrafts(context.Background())
		require.NoError(t, err)
		assert.Len(t, items, 2, "envelope=%v", envelope)
	}
}

func TestCreateAndUpdateTestimony(t *testing.T) {
	srv := newFake(t)
	token := srv.AddUser("ada@example.com", "pw", "Ada")
	sess := session.New(nil, 0, logging.Discard())
	ctx := context.Background()
	require.NoError(t, sess.Set(ctx, token))
	c := newTestClient(t, srv.URL, sess, Timeouts{})

	created, err := c.CreateTestimony(ctx, &models.CreateOrUpdateTestimonyRequest{
		SubmissionType: models.SubmissionWritten,
		EventTitle:     "Flood",
		Location:       "Riga",
		IsDraft:        true,
	})
	require.NoError(t, err)
	assert.True(t, created.IsDraft)
	assert.Equal(t, models.StatusPending, created.Status)

	consent := true
	updated, err := c.UpdateTestimony(ctx, created.ID, &models.CreateOrUpdateTestimonyRequest{
		TestimonyText: "We left at dawn.",
		Consent:       &consent,
	})
	require.NoError(t, err)
	assert.Equal(t, "Riga", updated.Location)
	assert.Equal(t, "We left at dawn.", updated.TestimonyText)
	assert.False(t, updated.IsDraft)
	assert.True(t, updated.Consent)

	got, err := c.GetTestimony(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.TestimonyText, got.TestimonyText)
}

func TestCreateTestimonyForm(t *testing.T) {
	srv := newFake(t)
	token := srv.AddUser("ada@example.com", "pw", "Ada")
	sess := session.New(nil, 0, logging.Discard())
	ctx := context.Background()
	require.NoError(t, sess.Set(ctx, token))
	c := newTestClient(t, srv.URL, sess, Timeouts{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("submissionType", "audio"))
	require.NoError(t, mw.WriteField("eventTitle", "Storm"))
	require.NoError(t, filex.WriteFormFile(mw, "audio", filex.FromBytes("voice.mp3", "audio/mpeg", []byte("id3"))))
	require.NoError(t, mw.Close())

	created, err := c.CreateTestimonyForm(ctx, &buf, mw.FormDataContentType())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionAudio, created.SubmissionType)
	assert.Contains(t, created.AudioURL, "voice.mp3")
}

func TestUploads(t *testing.T) {
	srv := newFake(t)
	token := srv.AddUser("ada@example.com", "pw", "Ada")
	sess := session.New(nil, 0, logging.Discard())
	ctx := context.Background()
	require.NoError(t, sess.Set(ctx, token))
	c := newTestClient(t, srv.URL, sess, Timeouts{})

	img, err := c.UploadImage(ctx, filex.FromBytes("a.png", "image/png", []byte("png")))
	require.NoError(t, err)
	assert.Equal(t, "a.png", img.FileName)
	assert.Contains(t, img.URL, "/media/images/a.png")

	audio, err := c.UploadAudio(ctx, filex.FromBytes("v.mp3", "audio/mpeg", []byte("mp3")))
	require.NoError(t, err)
	require.NotNil(t, audio.Duration)

	video, err := c.UploadVideo(ctx, filex.FromBytes("v.mp4", "video/mp4", []byte("mp4")))
	require.NoError(t, err)
	assert.Contains(t, video.URL, "/media/video/v.mp4")

	assert.Equal(t, []string{"a.png"}, srv.Uploaded("images"))

	srv.FailUploads("b.png", 1)
	_, err = c.UploadImage(ctx, filex.FromBytes("b.png", "image/png", []byte("png")))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpload_OpenFailure(t *testing.T) {
	srv := newFake(t)
	token := srv.AddUser("ada@example.com", "pw", "Ada")
	sess := session.New(nil, 0, logging.Discard())
	require.NoError(t, sess.Set(context.Background(), token))
	c := newTestClient(t, srv.URL, sess, Timeouts{})

	broken := filex.FromBytes("x.png", "image/png", nil)
	broken.Open = func() (io.ReadCloser, error) { return nil, errors.New("gone") }

	_, err := c.UploadImage(context.Background(), broken)
	assert.Error(t, err)

	_, err = c.UploadImage(context.Background(), nil)
	assert.Error(t, err)
}

func TestUploadResult_SalvagesTimedOutBody(t *testing.T) {
	c := newTestClient(t, "http://localhost:1", nil, Timeouts{})
	ctx := context.Background()
	readTimeout := c.mapError(&bodyReadError{err: context.DeadlineExceeded})

	urlOf := func(r models.ImageUploadResponse) string { return r.URL }

	got, err := uploadResult(c, ctx, "/upload/images", []byte(`{"url":"https://cdn/x.png","fileName":"x.png"}`), readTimeout, urlOf)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", got.URL)

	_, err = uploadResult(c, ctx, "/upload/images", []byte(`{"url":"https://cd`), readTimeout, urlOf)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = uploadResult(c, ctx, "/upload/images", []byte(`{"fileName":"x.png"}`), readTimeout, urlOf)
	assert.ErrorIs(t, err, ErrUnavailable)

	// Failures before the body are never salvaged.
	_, err = uploadResult(c, ctx, "/upload/images", []byte(`{"url":"u"}`), &APIError{Status: 500}, urlOf)
	assert.ErrorIs(t, err, ErrUnavailable)
}
