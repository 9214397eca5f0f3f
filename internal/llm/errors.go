package llm

import (
	"fmt"
	"strings"
)

// maxBodyExcerpt bounds the response body kept on an EvaluationError
const maxBodyExcerpt = 200

// EvaluationError reports a failed remote evaluation: transport failure,
// non-2xx status or a reply that does not parse into a verdict.
// It is always recoverable through the heuristic evaluator.
type EvaluationError struct {
	// StatusCode is the HTTP status, 0 when no response was received
	StatusCode int

	// Body is an excerpt of the response body
	Body string

	// Reason describes the failure when there is no HTTP status
	Reason string

	Err error
}

func (e *EvaluationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote evaluation failed (HTTP %d): %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("remote evaluation failed: %s: %v", e.Reason, e.Err)
	}
	return "remote evaluation failed: " + e.Reason
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// excerpt truncates s to maxBodyExcerpt characters
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxBodyExcerpt {
		return s
	}
	return string(runes[:maxBodyExcerpt])
}
