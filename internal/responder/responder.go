package responder

import (
	"context"

	"github.com/google/uuid"

	"github.com/casely/casely/internal/transcript"
)

// Context is the ephemeral per-request projection handed to a Responder. It is
// rebuilt from the transcript on every inbound message and never persisted.
type Context struct {
	SessionID uuid.UUID
	// Case is the case content document, including the problem statement.
	Case map[string]any
	// History is the ordered sequence of prior turns, oldest first.
	History []transcript.Turn
}

// Responder produces one reply for one user message. Implementations are
// synchronous and expected to either return a reply or fail outright; there is
// no partial-response mode.
type Responder interface {
	Respond(ctx context.Context, message string, conv Context) (string, error)
}
