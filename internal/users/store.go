package users

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore implements UserStore interface with in-memory storage
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users: make(map[uuid.UUID]*User),
	}
}

// CreateUser stores a new user
func (s *InMemoryStore) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user with id %s already exists", user.ID)
	}

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// GetUser retrieves a user by ID
func (s *InMemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, fmt.Errorf("user with id %s not found", id)
	}

	copied := *user
	return &copied, nil
}
