package cases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PostgresStore implements CaseStore interface with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// CaseSchema represents the cases table schema
type CaseSchema struct {
	bun.BaseModel `bun:"table:cases,alias:c"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	Title      string         `bun:"title,notnull" json:"title"`
	Content    map[string]any `bun:"content,notnull,type:jsonb" json:"content"`
	Difficulty string         `bun:"difficulty" json:"difficulty,omitempty"`
	CaseType   string         `bun:"case_type" json:"case_type,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// CreateCase stores a new case
func (s *PostgresStore) CreateCase(ctx context.Context, c *Case) error {
	schema := &CaseSchema{
		ID:         c.ID,
		Title:      c.Title,
		Content:    c.Content,
		Difficulty: c.Difficulty,
		CaseType:   c.CaseType,
		CreatedAt:  c.CreatedAt,
	}

	_, err := s.db.NewInsert().
		Model(schema).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

// GetCase retrieves a case by ID
func (s *PostgresStore) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	var schema CaseSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewCaseNotFoundError(id.String())
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	return schemaToCase(&schema), nil
}

// ListCases returns all cases ordered by creation time
func (s *PostgresStore) ListCases(ctx context.Context) ([]Case, error) {
	var schemas []CaseSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	list := make([]Case, 0, len(schemas))
	for i := range schemas {
		list = append(list, *schemaToCase(&schemas[i]))
	}
	return list, nil
}

func schemaToCase(schema *CaseSchema) *Case {
	return &Case{
		ID:         schema.ID,
		Title:      schema.Title,
		Content:    schema.Content,
		Difficulty: schema.Difficulty,
		CaseType:   schema.CaseType,
		CreatedAt:  schema.CreatedAt,
	}
}
