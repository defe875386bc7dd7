// Package session owns the authentication token of the running client.
//
// A Session is created once at startup and passed to the HTTP client, which
// reads the token for every request. It is the only component allowed to
// change or drop the token. A 401 seen by any request is reported through
// Invalidate together with the generation the request was sent with, so a
// stale failure cannot log out a session that was renewed in the meantime.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/common"
	"github.com/dmitrijs2005/testimonykeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL applies to tokens that carry no exp claim.
const DefaultTTL = 24 * time.Hour

// Claims are the fields the client reads from the access token. The token
// is not verified here; the backend does that on every call.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Store persists the token between runs.
type Store interface {
	Save(ctx context.Context, token string, loginTime time.Time) error
	Load(ctx context.Context) (token string, loginTime time.Time, err error)
	Clear(ctx context.Context) error
}

type Session struct {
	mu        sync.RWMutex
	token     string
	claims    *Claims
	gen       uint64
	lastLogin time.Time

	ttl           time.Duration
	store         Store
	log           logging.Logger
	now           func() time.Time
	onInvalidated func(ctx context.Context)
}

// New returns an empty session. store may be nil for an in-memory session.
func New(store Store, ttl time.Duration, log logging.Logger) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Session{store: store, ttl: ttl, log: log, now: time.Now}
}

// OnInvalidated registers the logout callback run after a 401 dropped the
// session. It runs outside the session lock.
func (s *Session) OnInvalidated(fn func(ctx context.Context)) {
	s.mu.Lock()
	s.onInvalidated = fn
	s.mu.Unlock()
}

// ParseClaims decodes the token payload without checking the signature.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

// Restore loads a persisted token. An expired or unreadable token is
// discarded and the session stays empty.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	token, loginTime, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if token == "" {
		return nil
	}

	claims, err := ParseClaims(token)
	if err != nil {
		s.log.Warn(ctx, "discarding unreadable stored token", "error", err)
		return s.store.Clear(ctx)
	}

	s.mu.Lock()
	s.token, s.claims, s.lastLogin = token, claims, loginTime
	s.gen++
	expired := s.expiredLocked()
	s.mu.Unlock()

	if expired {
		s.log.Info(ctx, "stored session expired")
		return s.Clear(ctx)
	}
	return nil
}

// Set installs a freshly issued token and persists it.
func (s *Session) Set(ctx context.Context, token string) error {
	claims, err := ParseClaims(token)
	if err != nil {
		return err
	}
	now := s.now()

	s.mu.Lock()
	s.token, s.claims, s.lastLogin = token, claims, now
	s.gen++
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, token, now); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

// Clear drops the token (explicit logout).
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.claims, s.lastLogin = "", nil, time.Time{}
	s.gen++
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// Token returns the current token and its generation. The token is empty
// when there is no session.
func (s *Session) Token() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.gen
}

func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Invalidate drops the session if gen is still current and reports whether
// it did. The registered callback runs only when the session was dropped.
func (s *Session) Invalidate(ctx context.Context, gen uint64) bool {
	s.mu.Lock()
	if gen != s.gen || s.token == "" {
		s.mu.Unlock()
		return false
	}
	s.token, s.claims, s.lastLogin = "", nil, time.Time{}
	s.gen++
	cb := s.onInvalidated
	s.mu.Unlock()

	s.log.Warn(ctx, "session invalidated by server")
	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			s.log.Error(ctx, "failed to clear stored session", "error", err)
		}
	}
	if cb != nil {
		cb(ctx)
	}
	return true
}

// Claims returns a copy of the decoded claims, or nil without a session.
func (s *Session) Claims() *Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return nil
	}
	c := *s.claims
	return &c
}

// Authenticated reports whether a non-expired token is held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && !s.expiredLocked()
}

// Expired reports whether the held token is past its expiry. An empty
// session counts as expired.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token == "" || s.expiredLocked()
}

// ExpiresIn is the time left before the token expires; zero or negative
// when expired or absent.
func (s *Session) ExpiresIn() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return 0
	}
	return s.expiresAtLocked().Sub(s.now())
}

func (s *Session) LastLogin() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastLogin
}

func (s *Session) expiresAtLocked() time.Time {
	if s.claims != nil && s.claims.ExpiresAt != nil {
		return s.claims.ExpiresAt.Time
	}
	return s.lastLogin.Add(s.ttl)
}

func (s *Session) expiredLocked() bool {
	return !s.now().Before(s.expiresAtLocked())
}
