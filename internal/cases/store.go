package cases

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore implements CaseStore interface with in-memory storage
type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[uuid.UUID]*Case
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		cases: make(map[uuid.UUID]*Case),
	}
}

// CreateCase stores a new case
func (s *InMemoryStore) CreateCase(ctx context.Context, c *Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cases[c.ID]; exists {
		return fmt.Errorf("case with id %s already exists", c.ID)
	}

	copied := *c
	s.cases[c.ID] = &copied
	return nil
}

// GetCase retrieves a case by ID
func (s *InMemoryStore) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.cases[id]
	if !exists {
		return nil, NewCaseNotFoundError(id.String())
	}

	copied := *c
	return &copied, nil
}

// ListCases returns all cases ordered by creation time
func (s *InMemoryStore) ListCases(ctx context.Context) ([]Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Case, 0, len(s.cases))
	for _, c := range s.cases {
		list = append(list, *c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
