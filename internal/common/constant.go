// Package common contains shared constants and sentinel errors used across
// testimonykeeper components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName tags every outbound request with a unique id.
	RequestIDHeaderName = "X-Request-ID"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "
)
