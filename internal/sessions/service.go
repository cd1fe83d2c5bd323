package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionService implements the SessionManager interface
type SessionService struct {
	store SessionStore
}

// NewSessionService creates a new session service
func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{
		store: store,
	}
}

// CreateSession creates a new session in the active state
func (s *SessionService) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if req.CaseID == uuid.Nil {
		return nil, fmt.Errorf("case_id is required")
	}

	now := time.Now()
	session := &Session{
		ID:             uuid.New(),
		UserID:         req.UserID,
		CaseID:         req.CaseID,
		Status:         StatusActive,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a session by ID
func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.store.GetSession(ctx, id)
}

// TouchActive stamps last activity and moves the session to active. This is
// how a paused session comes back to life after a successfully processed
// message on a later connection.
func (s *SessionService) TouchActive(ctx context.Context, id uuid.UUID) error {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}

	if session.Status != StatusActive && !session.Status.CanTransitionTo(StatusActive) {
		return NewInvalidTransitionError(id.String(), session.Status, StatusActive)
	}

	session.Status = StatusActive
	session.LastActivityAt = time.Now()

	if err := s.store.UpdateStatus(ctx, session); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// EndSession marks the session ended and stamps the ended timestamp. Ending an
// already ended session is an invalid transition.
func (s *SessionService) EndSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.Status.CanTransitionTo(StatusEnded) {
		return nil, NewInvalidTransitionError(id.String(), session.Status, StatusEnded)
	}

	now := time.Now()
	session.Status = StatusEnded
	session.LastActivityAt = now
	session.EndedAt = &now

	if err := s.store.UpdateStatus(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	return session, nil
}

// PauseIfActive moves an active session to paused, the disconnect path. A
// session in any other state is left exactly as it is.
func (s *SessionService) PauseIfActive(ctx context.Context, id uuid.UUID) error {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}

	if session.Status != StatusActive {
		return nil
	}

	session.Status = StatusPaused

	if err := s.store.UpdateStatus(ctx, session); err != nil {
		return fmt.Errorf("failed to pause session: %w", err)
	}
	return nil
}
