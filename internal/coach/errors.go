package coach

import (
	"errors"
	"fmt"
)

const (
	// NoResponseText replaces a reply the endpoint sent in an unexpected shape.
	NoResponseText = "Sorry, I couldn't generate a response."

	ConnectionTroubleText = "Sorry, I'm having trouble connecting right now. Please try again later."
	MealNotLoggedText     = "Sorry, I couldn't log that meal. Please try again."
)

var (
	ErrEmptyHistory      = errors.New("chat history is empty")
	ErrMalformedResponse = errors.New("malformed generateContent response")
)

// RateLimitExhaustedError means every attempt ended in 429 or 5xx.
type RateLimitExhaustedError struct {
	Attempts   int
	LastStatus int
}

func (e *RateLimitExhaustedError) Error() string {
	return fmt.Sprintf("gemini still unavailable after %d attempts (last status %d)", e.Attempts, e.LastStatus)
}

func (e *RateLimitExhaustedError) Code() string { return "RATE_LIMIT_EXHAUSTED" }

// UpstreamRejectedError is a non-retryable 4xx from the endpoint.
type UpstreamRejectedError struct {
	Status  int
	Message string
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("gemini rejected request (%d): %s", e.Status, e.Message)
}

func (e *UpstreamRejectedError) Code() string { return "UPSTREAM_REJECTED" }

// TransportError means the endpoint could not be reached, or the caller gave up waiting.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gemini unreachable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Code() string { return "TRANSPORT_FAILURE" }

// ActionMutationError wraps a failure of the meal creation triggered by a log_meal action.
type ActionMutationError struct {
	Err error
}

func (e *ActionMutationError) Error() string {
	return fmt.Sprintf("failed to log meal from chat: %v", e.Err)
}

func (e *ActionMutationError) Unwrap() error { return e.Err }

func (e *ActionMutationError) Code() string { return "ACTION_MUTATION_FAILED" }

// ErrorCode returns the API error code for a Converse error.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return "AI_ERROR"
}

// FallbackReply is the single message shown in the conversation when Converse fails.
func FallbackReply(err error) string {
	var mutation *ActionMutationError
	if errors.As(err, &mutation) {
		return MealNotLoggedText
	}
	return ConnectionTroubleText
}
