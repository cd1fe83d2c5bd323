package cases

import (
	"context"

	"github.com/google/uuid"
)

// CaseStore defines the interface for case storage operations
type CaseStore interface {
	GetCase(ctx context.Context, id uuid.UUID) (*Case, error)
	ListCases(ctx context.Context) ([]Case, error)
	CreateCase(ctx context.Context, c *Case) error
}
