package sessions

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore implements SessionStore interface with in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// CreateSession creates a new session
func (s *InMemoryStore) CreateSession(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return &SessionError{
			Type:      SessionErrorTypeInvalidRequest,
			SessionID: session.ID.String(),
			Message:   "session already exists",
		}
	}

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

// GetSession retrieves a session by ID
func (s *InMemoryStore) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, NewSessionNotFoundError(id.String())
	}

	copied := *session
	return &copied, nil
}

// UpdateStatus overwrites the mutable lifecycle fields of a stored session
func (s *InMemoryStore) UpdateStatus(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.sessions[session.ID]
	if !exists {
		return NewSessionNotFoundError(session.ID.String())
	}

	stored.Status = session.Status
	stored.LastActivityAt = session.LastActivityAt
	stored.EndedAt = session.EndedAt
	return nil
}
