package models

import "github.com/google/uuid"

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WebSocket message types

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type MealEvent struct {
	MealID uuid.UUID `json:"meal_id"`
	UserID uuid.UUID `json:"user_id"`
	Meal   *Meal     `json:"meal,omitempty"`
}
