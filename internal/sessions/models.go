package sessions

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an interview session.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEnded  Status = "ended"
)

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
// Permitted moves: active ⇄ paused, active → ended, paused → ended.
// ended is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusPaused || next == StatusEnded || next == StatusActive
	case StatusPaused:
		return next == StatusActive || next == StatusEnded
	case StatusEnded:
		return false
	}
	return false
}

// Session represents one end-to-end interview conversation instance.
type Session struct {
	ID             uuid.UUID  `json:"session_id"`
	UserID         uuid.UUID  `json:"user_id"`
	CaseID         uuid.UUID  `json:"case_id"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	// EndedAt is set if and only if Status is ended.
	EndedAt *time.Time `json:"ended_at,omitempty"`
}

// CreateSessionRequest represents a request to create a new session
type CreateSessionRequest struct {
	UserID uuid.UUID `json:"user_id"`
	CaseID uuid.UUID `json:"case_id"`
}
