package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore implements Store with in-memory storage
type InMemoryStore struct {
	mu    sync.RWMutex
	turns map[uuid.UUID][]Turn
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		turns: make(map[uuid.UUID][]Turn),
	}
}

// CountTurns returns the number of turns recorded for a session
func (s *InMemoryStore) CountTurns(ctx context.Context, sessionID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.turns[sessionID]), nil
}

// AppendExchange appends a user turn and its assistant reply atomically
func (s *InMemoryStore) AppendExchange(ctx context.Context, sessionID uuid.UUID, userText, assistantText string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	userIndex := len(s.turns[sessionID])
	assistantIndex := userIndex + 1

	s.turns[sessionID] = append(s.turns[sessionID],
		Turn{
			UUID:      uuid.New(),
			SessionID: sessionID,
			TurnIndex: userIndex,
			Role:      RoleUser,
			Content:   userText,
			Timestamp: now,
		},
		Turn{
			UUID:      uuid.New(),
			SessionID: sessionID,
			TurnIndex: assistantIndex,
			Role:      RoleAssistant,
			Content:   assistantText,
			Timestamp: now,
		},
	)

	return userIndex, assistantIndex, nil
}

// ListTurns returns all turns for a session in ascending index order
func (s *InMemoryStore) ListTurns(ctx context.Context, sessionID uuid.UUID) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.turns[sessionID]
	turns := make([]Turn, len(stored))
	copy(turns, stored)
	return turns, nil
}
