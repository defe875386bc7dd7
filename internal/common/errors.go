// Package common defines shared constants and sentinel errors used across
// the client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Session errors.
	ErrNoSession    = errors.New("no active session")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Submission errors.
	ErrValidation   = errors.New("validation error")
	ErrFileTooLarge = errors.New("file too large")
)

// WipeByteArray overwrites b with zeros. Nil is accepted.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
