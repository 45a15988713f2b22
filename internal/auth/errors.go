package auth

import "errors"

// Domain-specific errors for the auth flow.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrCommunication is returned for transport-level failures (DNS,
	// timeout, connection reset). Callers may retry.
	ErrCommunication = errors.New("auth: communication failure")

	// ErrAuthentication is returned when the cloud rejects credentials
	// or a token. Not retryable; requires a fresh login.
	ErrAuthentication = errors.New("auth: authentication rejected")

	// ErrProtocol is returned when a server response does not have the
	// expected shape (missing redirect, missing query parameter,
	// unparseable body).
	ErrProtocol = errors.New("auth: unexpected server response")
)
