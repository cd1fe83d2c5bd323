package users

import (
	"context"

	"github.com/google/uuid"
)

// UserStore defines the interface for user storage operations
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}

// UserService defines user operations needed by the session collaborators
type UserService interface {
	// EnsureUser returns the user with the given id, creating a placeholder
	// record if none exists yet.
	EnsureUser(ctx context.Context, id uuid.UUID) (*User, error)
}
