package transcript

import (
	"time"

	"github.com/google/uuid"
)

// Role is the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a session's transcript. Turns are immutable once
// written; per session their indices form the contiguous sequence 0..N-1.
type Turn struct {
	UUID      uuid.UUID `json:"uuid"`
	SessionID uuid.UUID `json:"session_id"`
	TurnIndex int       `json:"turn_index"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
