package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

func jsonBody(v any) (io.Reader, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return buf, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.call(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: "application/json",
	}, out)
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.postJSON(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.postJSON(ctx, "/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GoogleCallback exchanges an OAuth authorization code for an access token.
func (c *HTTPClient) GoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("google callback: empty code")
	}
	var resp models.AuthResponse
	err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/auth/google/callback",
		query:  url.Values{"code": []string{code}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, request{method: http.MethodGet, path: "/auth/me"}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Ping checks /health. A body with a status other than "ok" counts as down.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	body, err := c.send(ctx, request{method: http.MethodGet, path: "/health"})
	if err != nil {
		return err
	}
	if json.Unmarshal(body, &resp) == nil && resp.Status != "" && !strings.EqualFold(resp.Status, "ok") {
		return fmt.Errorf("%w: health status %q", ErrUnavailable, resp.Status)
	}
	return nil
}
