package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PostgresStore implements Store with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// TurnSchema represents the turns table schema
type TurnSchema struct {
	bun.BaseModel `bun:"table:turns,alias:t"`

	UUID      uuid.UUID `bun:"uuid,pk,type:uuid" json:"uuid"`
	SessionID uuid.UUID `bun:"session_id,notnull,type:uuid" json:"session_id"`
	TurnIndex int       `bun:"turn_index,notnull" json:"turn_index"`
	Role      string    `bun:"role,notnull" json:"role"`
	Content   string    `bun:"content,notnull" json:"content"`
	Timestamp time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp" json:"timestamp"`
}

// TurnIndexes are the index definitions for the turns table. The unique index
// on (session_id, turn_index) is load-bearing: a racing append aborts the
// whole transaction instead of leaving a gap or a duplicate.
var TurnIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_turns_session_turn ON turns (session_id, turn_index)`,
	`CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns (session_id)`,
}

// CountTurns returns the number of turns recorded for a session
func (s *PostgresStore) CountTurns(ctx context.Context, sessionID uuid.UUID) (int, error) {
	count, err := s.db.NewSelect().
		Model((*TurnSchema)(nil)).
		Where("session_id = ?", sessionID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}

	return count, nil
}

// AppendExchange appends a user turn and its assistant reply in one
// transaction. The next index is derived inside the transaction, never cached
// across connections.
func (s *PostgresStore) AppendExchange(ctx context.Context, sessionID uuid.UUID, userText, assistantText string) (int, int, error) {
	var userIndex, assistantIndex int

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var maxIndex sql.NullInt64
		err := tx.NewSelect().
			Model((*TurnSchema)(nil)).
			ColumnExpr("MAX(turn_index)").
			Where("session_id = ?", sessionID).
			Scan(ctx, &maxIndex)
		if err != nil {
			return fmt.Errorf("failed to read current max turn index: %w", err)
		}

		userIndex = 0
		if maxIndex.Valid {
			userIndex = int(maxIndex.Int64) + 1
		}
		assistantIndex = userIndex + 1

		now := time.Now()
		turns := []TurnSchema{
			{
				UUID:      uuid.New(),
				SessionID: sessionID,
				TurnIndex: userIndex,
				Role:      string(RoleUser),
				Content:   userText,
				Timestamp: now,
			},
			{
				UUID:      uuid.New(),
				SessionID: sessionID,
				TurnIndex: assistantIndex,
				Role:      string(RoleAssistant),
				Content:   assistantText,
				Timestamp: now,
			},
		}

		if _, err := tx.NewInsert().Model(&turns).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert exchange: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to append exchange: %w", err)
	}

	return userIndex, assistantIndex, nil
}

// ListTurns returns all turns for a session in ascending index order
func (s *PostgresStore) ListTurns(ctx context.Context, sessionID uuid.UUID) ([]Turn, error) {
	var schemas []TurnSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Where("session_id = ?", sessionID).
		Order("turn_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}

	turns := make([]Turn, 0, len(schemas))
	for i := range schemas {
		turns = append(turns, *schemaToTurn(&schemas[i]))
	}
	return turns, nil
}

func schemaToTurn(schema *TurnSchema) *Turn {
	return &Turn{
		UUID:      schema.UUID,
		SessionID: schema.SessionID,
		TurnIndex: schema.TurnIndex,
		Role:      Role(schema.Role),
		Content:   schema.Content,
		Timestamp: schema.Timestamp,
	}
}
