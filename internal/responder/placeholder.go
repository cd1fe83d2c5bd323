package responder

import (
	"context"
	"math/rand"
	"strings"
)

// Placeholder is a keyword-matched stand-in for a real interviewer. It will be
// replaced by an AI-backed implementation behind the same interface.
type Placeholder struct{}

// NewPlaceholder creates a new placeholder responder
func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

var fallbackResponses = []string{
	"I see. Can you elaborate on that?",
	"Interesting point. Tell me more about your reasoning.",
	"Good observation. What else should we consider?",
	"That's one angle. What other factors might be at play?",
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Respond picks a canned reply by inspecting the message content.
func (p *Placeholder) Respond(ctx context.Context, message string, conv Context) (string, error) {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, "question", "clarify", "clarification"):
		return "That's a great question. For this case, assume we're looking at the US market over the past 2 years. What else would you like to know?", nil
	case containsAny(lower, "think", "moment", "minute"):
		return "Of course, take your time. I'm here when you're ready.", nil
	case containsAny(lower, "framework", "structure", "approach"):
		return "Interesting framework. Let's start by diving into the first element you mentioned. Can you walk me through your thinking there?", nil
	case containsAny(lower, "revenue", "sales", "income"):
		return "Good thinking on the revenue side. What specific factors would you examine to understand the revenue decline?", nil
	case containsAny(lower, "cost", "expense", "spending"):
		return "Yes, costs are definitely worth exploring. What cost categories would you want to break down?", nil
	case containsAny(lower, "recommend", "recommendation", "suggest"):
		return "Those are solid recommendations. What would you prioritize as the most important next step?", nil
	}

	return fallbackResponses[rand.Intn(len(fallbackResponses))], nil
}
