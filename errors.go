package finsight

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrEmptyMessage indicates Send was called with empty or
	// whitespace-only text.
	ErrEmptyMessage = errors.New("empty message")

	// ErrSessionNotFound indicates the backend does not know the session.
	ErrSessionNotFound = errors.New("session not found")
)

// BackendError is a structured error reported by the FinSIGHT backend,
// as opposed to a transport failure. Message carries the backend's error
// text verbatim so callers can show it to the user.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}
