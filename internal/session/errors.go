package session

import "errors"

// Domain-specific errors for the session lifecycle.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when a publish is attempted without a
	// live transport.
	ErrNotConnected = errors.New("session: transport not connected")

	// ErrAlreadyConnected is returned by Connect on a session that is
	// not in the disconnected state.
	ErrAlreadyConnected = errors.New("session: already connected")

	// ErrBadMessage is returned by the inbound dispatcher for payloads
	// that cannot be parsed. The message is dropped; the transport
	// stays up.
	ErrBadMessage = errors.New("session: malformed message")

	// ErrRetriesExhausted marks the terminal state reached after the
	// maximum number of consecutive transport disconnects. The session
	// stops; the caller must reconnect explicitly.
	ErrRetriesExhausted = errors.New("session: reconnect retries exhausted")
)
