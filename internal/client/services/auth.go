// Package services contains the application services of the testimony
// client. This file defines the authentication service: password, signup
// and Google logins, logout, the current user and the liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/cache"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/client/session"
	"github.com/dmitrijs2005/testimonykeeper/internal/common"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
)

var ErrMissingCredentials = errors.New("email and password are required")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login, Signup, LoginWithGoogle: obtain a token and install it in the
//     session, which persists it locally.
//   - Logout: tell the server, then drop the session and cached queries even
//     if the server call failed.
//   - Me: the account behind the current token.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Signup(ctx context.Context, fullName, email string, password []byte) (*models.User, error)
	LoginWithGoogle(ctx context.Context, code string) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session *session.Session
	cache   cache.Cache
	log     logging.Logger
}

func NewAuthService(c client.Client, sess *session.Session, qc cache.Cache, log logging.Logger) AuthService {
	return &authService{client: c, session: sess, cache: qc, log: log}
}

// Login wipes password after use.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		return nil, ErrMissingCredentials
	}

	resp, err := a.client.Login(ctx, models.LoginRequest{Email: email, Password: string(password)})
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	return a.establish(ctx, resp)
}

func (a *authService) Signup(ctx context.Context, fullName, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		return nil, ErrMissingCredentials
	}

	resp, err := a.client.Signup(ctx, models.SignupRequest{
		FullName: strings.TrimSpace(fullName),
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}
	return a.establish(ctx, resp)
}

// LoginWithGoogle completes the OAuth flow with the code the browser
// received on the callback URL.
func (a *authService) LoginWithGoogle(ctx context.Context, code string) (*models.User, error) {
	resp, err := a.client.GoogleCallback(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google login error: %w", err)
	}
	return a.establish(ctx, resp)
}

func (a *authService) establish(ctx context.Context, resp *models.AuthResponse) (*models.User, error) {
	if resp == nil || resp.AccessToken == "" {
		return nil, fmt.Errorf("login error: %w", common.ErrInvalidToken)
	}
	if err := a.session.Set(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("session error: %w", err)
	}
	a.dropCache(ctx)

	if resp.User != nil {
		return resp.User, nil
	}
	return a.Me(ctx)
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
	a.dropCache(ctx)
	return a.session.Clear(ctx)
}

func (a *authService) Me(ctx context.Context) (*models.User, error) {
	if tok, _ := a.session.Token(); tok == "" {
		return nil, common.ErrNoSession
	}
	return a.client.Me(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return errors.Join(a.client.Close(), a.cache.Close())
}

func (a *authService) dropCache(ctx context.Context) {
	if err := a.cache.InvalidatePrefix(ctx, ""); err != nil {
		a.log.Warn(ctx, "cache invalidation failed", "error", err)
	}
}
