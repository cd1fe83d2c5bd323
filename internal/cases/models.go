package cases

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Case is the static reference content a session is conducted against. The
// conversation engine reads it but never mutates it.
type Case struct {
	ID         uuid.UUID      `json:"id"`
	Title      string         `json:"title"`
	Content    map[string]any `json:"content"`
	Difficulty string         `json:"difficulty,omitempty"`
	CaseType   string         `json:"case_type,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ProblemStatement returns the case's problem statement from the content
// document, with a fallback for cases authored without one.
func (c *Case) ProblemStatement() string {
	if s, ok := c.Content["problem_statement"].(string); ok && s != "" {
		return s
	}
	return "Case problem statement"
}

// CaseError represents errors related to case operations
type CaseError struct {
	Type    string
	CaseID  string
	Message string
	Cause   error
}

func (e *CaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("case error [%s] for case %s: %s (caused by: %v)", e.Type, e.CaseID, e.Message, e.Cause)
	}
	return fmt.Sprintf("case error [%s] for case %s: %s", e.Type, e.CaseID, e.Message)
}

func (e *CaseError) Unwrap() error {
	return e.Cause
}

// Case error types
const (
	CaseErrorTypeNotFound = "not_found"
)

// NewCaseNotFoundError creates an error for when a case is not found
func NewCaseNotFoundError(caseID string) *CaseError {
	return &CaseError{
		Type:    CaseErrorTypeNotFound,
		CaseID:  caseID,
		Message: "case not found",
	}
}

// IsNotFound reports whether err is a case not-found error.
func IsNotFound(err error) bool {
	var ce *CaseError
	return errors.As(err, &ce) && ce.Type == CaseErrorTypeNotFound
}
