// Package client talks to the testimony archive REST API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): auth,
//     testimonies, drafts, media uploads and the /health probe.
//  2. A concrete HTTP implementation (see HTTPClient) that injects the bearer
//     token held by a session.Session, tags every call with an X-Request-ID,
//     reports 401 responses back to the session and maps failures to
//     sentinel errors.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError carrying the status and the
// server's message. APIError unwraps to ErrUnauthorized, ErrNotFound or
// ErrUnavailable where the status allows, so callers can use errors.Is.
// Timeouts and connection failures wrap ErrUnavailable and keep the
// underlying cause.
//
// # Response shapes
//
// List endpoints may answer with a bare JSON array or with an envelope
// {"data": [...]}; both are normalized on receipt.
package client
