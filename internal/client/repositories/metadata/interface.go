package metadata

import (
	"context"
)

// Key names a value kept in the metadata table.
type Key string

const (
	// KeyAuthToken is the bearer token of the current session.
	KeyAuthToken Key = "auth_token"

	// KeyLastLoginTime is the RFC 3339 time of the last successful login.
	KeyLastLoginTime Key = "last_login_time"
)

// Repository is a small key/value store for client state that has to
// survive restarts. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, keys ...Key) error
}
