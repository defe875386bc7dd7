package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/session"
	"github.com/dmitrijs2005/testimonykeeper/internal/common"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
	"github.com/dmitrijs2005/testimonykeeper/internal/netx"
	"github.com/google/uuid"
)

// Timeouts bound each class of call.
type Timeouts struct {
	Request     time.Duration
	Submit      time.Duration
	ImageUpload time.Duration
	AudioUpload time.Duration
	VideoUpload time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Request:     10 * time.Second,
		Submit:      300 * time.Second,
		ImageUpload: 120 * time.Second,
		AudioUpload: 120 * time.Second,
		VideoUpload: 300 * time.Second,
	}
}

type HTTPClient struct {
	baseURL  string
	http     *http.Client
	session  *session.Session
	log      logging.Logger
	timeouts Timeouts
}

// NewHTTPClient returns a client for baseURL. sess may be nil for
// unauthenticated use; zero timeouts fall back to DefaultTimeouts.
func NewHTTPClient(baseURL string, sess *session.Session, log logging.Logger, timeouts Timeouts) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	def := DefaultTimeouts()
	if timeouts.Request <= 0 {
		timeouts.Request = def.Request
	}
	if timeouts.Submit <= 0 {
		timeouts.Submit = def.Submit
	}
	if timeouts.ImageUpload <= 0 {
		timeouts.ImageUpload = def.ImageUpload
	}
	if timeouts.AudioUpload <= 0 {
		timeouts.AudioUpload = def.AudioUpload
	}
	if timeouts.VideoUpload <= 0 {
		timeouts.VideoUpload = def.VideoUpload
	}

	return &HTTPClient{
		baseURL:  strings.TrimRight(u.String(), "/"),
		http:     &http.Client{},
		session:  sess,
		log:      log,
		timeouts: timeouts,
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	timeout     time.Duration
}

// bodyReadError marks a failure that happened after a 2xx status line was
// received, while the body was still being read.
type bodyReadError struct {
	err error
}

func (e *bodyReadError) Error() string { return "read response body: " + e.err.Error() }
func (e *bodyReadError) Unwrap() error { return e.err }

// send performs r and returns the response body. On a body read failure the
// bytes read so far are returned alongside the error.
func (c *HTTPClient) send(ctx context.Context, r request) ([]byte, error) {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = c.timeouts.Request
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		if rc, ok := r.body.(io.Closer); ok {
			_ = rc.Close()
		}
		return nil, fmt.Errorf("create request %s %s: %w", r.method, r.path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	var gen uint64
	if c.session != nil {
		var token string
		token, gen = c.session.Token()
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	c.log.Debug(ctx, "api request", "method", r.method, "path", r.path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapError(fmt.Errorf("%s %s: %w", r.method, r.path, err))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized && c.session != nil {
		c.session.Invalidate(context.WithoutCancel(ctx), gen)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp.StatusCode, body)
		c.log.Debug(ctx, "api error", "path", r.path, "status", resp.StatusCode, "request_id", requestID)
		return nil, apiErr
	}

	if readErr != nil {
		return body, c.mapError(&bodyReadError{err: readErr})
	}
	return body, nil
}

// call sends r and decodes a JSON body into out when out is non-nil.
func (c *HTTPClient) call(ctx context.Context, r request, out any) error {
	body, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if netx.IsTimeout(err) || netx.IsNetworkError(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
