package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// ChatRequest is the payload sent to the coach endpoint. Date is the day the
// client is looking at (YYYY-MM-DD); meals logged from chat land on it.
type ChatRequest struct {
	History []ChatMessage `json:"history"`
	Date    string        `json:"date,omitempty"`
}

// ChatResponse is the reply from the coach.
type ChatResponse struct {
	Reply     string `json:"reply"`
	Action    string `json:"action,omitempty"`
	Meal      *Meal  `json:"meal,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// CoachingContext is the per-call snapshot interpolated into the coach prompt.
type CoachingContext struct {
	Name       string
	Age        int
	Height     float64
	Weight     float64
	Goal       string
	Targets    Goals
	Consumed   MacroTotals
	ActiveDate time.Time
}
