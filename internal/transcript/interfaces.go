package transcript

import (
	"context"

	"github.com/google/uuid"
)

// Store is the durable, append-only log of turns per session.
//
// AppendExchange is the only write path. It appends a user turn and the
// assistant turn that answers it as one atomic unit with consecutive indices
// immediately following the session's current maximum index. Either both rows
// land or neither does; a later ListTurns must never observe a half-written
// exchange. AppendExchange is safe to call concurrently for distinct
// sessions; ordering is only guaranteed within a session.
type Store interface {
	CountTurns(ctx context.Context, sessionID uuid.UUID) (int, error)
	AppendExchange(ctx context.Context, sessionID uuid.UUID, userText, assistantText string) (userIndex, assistantIndex int, err error)
	ListTurns(ctx context.Context, sessionID uuid.UUID) ([]Turn, error)
}
