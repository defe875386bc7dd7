// Package netx classifies transport errors so callers can decide whether a
// failed request is worth retrying.
package netx

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// IsTimeout reports whether err was caused by a deadline: an http.Client
// timeout, a context deadline, or a socket deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsNetworkError reports whether err is a connection-level failure (refused,
// reset, DNS, truncated response) rather than an application error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// IsRetryable is IsTimeout or IsNetworkError.
func IsRetryable(err error) bool {
	return IsTimeout(err) || IsNetworkError(err)
}
