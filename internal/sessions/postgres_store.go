package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PostgresStore implements SessionStore interface with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// SessionSchema represents the sessions table schema
type SessionSchema struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id"`
	CaseID         uuid.UUID  `bun:"case_id,notnull,type:uuid" json:"case_id"`
	Status         string     `bun:"status,notnull,default:'active'" json:"status"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	LastActivityAt time.Time  `bun:"last_activity_at,nullzero,notnull,default:current_timestamp" json:"last_activity_at"`
	EndedAt        *time.Time `bun:"ended_at,nullzero" json:"ended_at,omitempty"`
}

// SessionIndexes are the index definitions for the sessions table
var SessionIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_case_id ON sessions (case_id)`,
}

// CreateSession creates a new session
func (s *PostgresStore) CreateSession(ctx context.Context, session *Session) error {
	schema := sessionToSchema(session)

	_, err := s.db.NewInsert().
		Model(schema).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var schema SessionSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewSessionNotFoundError(id.String())
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return schemaToSession(&schema), nil
}

// UpdateStatus performs a single-row update of the mutable lifecycle fields
func (s *PostgresStore) UpdateStatus(ctx context.Context, session *Session) error {
	result, err := s.db.NewUpdate().
		Model((*SessionSchema)(nil)).
		Where("id = ?", session.ID).
		Set("status = ?", string(session.Status)).
		Set("last_activity_at = ?", session.LastActivityAt).
		Set("ended_at = ?", session.EndedAt).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return NewSessionNotFoundError(session.ID.String())
	}

	return nil
}

func sessionToSchema(session *Session) *SessionSchema {
	return &SessionSchema{
		ID:             session.ID,
		UserID:         session.UserID,
		CaseID:         session.CaseID,
		Status:         string(session.Status),
		CreatedAt:      session.CreatedAt,
		LastActivityAt: session.LastActivityAt,
		EndedAt:        session.EndedAt,
	}
}

// schemaToSession converts database schema to session model
func schemaToSession(schema *SessionSchema) *Session {
	return &Session{
		ID:             schema.ID,
		UserID:         schema.UserID,
		CaseID:         schema.CaseID,
		Status:         Status(schema.Status),
		CreatedAt:      schema.CreatedAt,
		LastActivityAt: schema.LastActivityAt,
		EndedAt:        schema.EndedAt,
	}
}
