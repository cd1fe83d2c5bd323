package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service implements the UserService interface
type Service struct {
	store UserStore
}

// NewService creates a new user service
func NewService(store UserStore) *Service {
	return &Service{
		store: store,
	}
}

// EnsureUser returns the user with the given id, creating a placeholder
// record with a generated email if none exists.
func (s *Service) EnsureUser(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	existing, err := s.store.GetUser(ctx, id)
	if err == nil {
		return existing, nil
	}

	user := &User{
		ID:        id,
		Email:     fmt.Sprintf("user_%s@example.com", id),
		Name:      "Test User",
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
