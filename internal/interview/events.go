package interview

// Event types exchanged over an interview connection.
const (
	EventUserMessage  = "user_message"
	EventEndSession   = "end_session"
	EventAgentMessage = "agent_message"
	EventError        = "error"
	EventSessionEnded = "session_ended"
)

// InboundEvent is one structured message received from the client.
type InboundEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// OutboundEvent is one structured message sent to the client.
type OutboundEvent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// AgentMessage builds an agent_message event carrying reply or greeting text.
func AgentMessage(text string) *OutboundEvent {
	return &OutboundEvent{Type: EventAgentMessage, Text: text}
}

// ErrorEvent builds an error event.
func ErrorEvent(message string) *OutboundEvent {
	return &OutboundEvent{Type: EventError, Error: message}
}

// SessionEnded builds the confirmation event sent before a terminal close.
func SessionEnded(message string) *OutboundEvent {
	return &OutboundEvent{Type: EventSessionEnded, Message: message}
}
