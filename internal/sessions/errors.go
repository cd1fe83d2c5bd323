package sessions

import (
	"errors"
	"fmt"
)

// SessionError represents errors related to session operations
type SessionError struct {
	Type      string
	SessionID string
	Message   string
	Cause     error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session error [%s] for session %s: %s (caused by: %v)", e.Type, e.SessionID, e.Message, e.Cause)
	}
	return fmt.Sprintf("session error [%s] for session %s: %s", e.Type, e.SessionID, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}

// Session error types
const (
	SessionErrorTypeNotFound          = "not_found"
	SessionErrorTypeInvalidRequest    = "invalid_request"
	SessionErrorTypeInvalidTransition = "invalid_transition"
)

// NewSessionNotFoundError creates an error for when a session is not found
func NewSessionNotFoundError(sessionID string) *SessionError {
	return &SessionError{
		Type:      SessionErrorTypeNotFound,
		SessionID: sessionID,
		Message:   "session not found",
	}
}

// NewInvalidTransitionError creates an error for a lifecycle transition the
// state table forbids.
func NewInvalidTransitionError(sessionID string, from, to Status) *SessionError {
	return &SessionError{
		Type:      SessionErrorTypeInvalidTransition,
		SessionID: sessionID,
		Message:   fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// IsNotFound reports whether err is a session not-found error.
func IsNotFound(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Type == SessionErrorTypeNotFound
}
