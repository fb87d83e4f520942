package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the camship domain.
// They are returned by the public API and can be checked with errors.Is.
var (
	// ErrNoFrame is returned by a frame source that could not produce a
	// frame for this capture attempt. It is never fatal to a session.
	ErrNoFrame = errors.New("camship: no frame available")

	// ErrConnect is returned when the connection to the collector cannot be
	// established.
	ErrConnect = errors.New("camship: connect failed")

	// ErrConnClosed is returned by writes and reads on a closed connection.
	ErrConnClosed = errors.New("camship: connection closed")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("camship: invalid configuration")

	// ErrUnexpectedStatus is returned by the single-shot helpers when the
	// server does not answer 200.
	ErrUnexpectedStatus = errors.New("camship: unexpected HTTP status")
)

// SessionError reports a fatal streaming failure together with the state the
// session was in when it happened.
type SessionError struct {
	State State
	Err   error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session aborted in %s: %v", e.State, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
