package sessions

import (
	"context"

	"github.com/google/uuid"
)

// SessionManager defines the interface for session lifecycle operations
type SessionManager interface {
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	// TouchActive stamps last activity and sets status to active. Used after a
	// message exchange has been processed, including paused → active on resume.
	TouchActive(ctx context.Context, id uuid.UUID) error
	// EndSession marks the session ended and stamps the ended timestamp.
	EndSession(ctx context.Context, id uuid.UUID) (*Session, error)
	// PauseIfActive moves an active session to paused. Any other current status
	// is left untouched and no error is returned.
	PauseIfActive(ctx context.Context, id uuid.UUID) error
}

// SessionStore defines the interface for session storage operations
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	// UpdateStatus performs a single-row status update. EndedAt and
	// LastActivityAt are written as given; callers own the transition rules.
	UpdateStatus(ctx context.Context, session *Session) error
}
