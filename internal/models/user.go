package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Height        float64   `json:"height"` // cm
	Weight        float64   `json:"weight"` // kg
	ActivityLevel string    `json:"activityLevel"`
	Goal          string    `json:"goal"` // "lose" | "maintain" | "gain"
	CreatedAt     time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name          string  `json:"name" validate:"required,max=120"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required"`
	Age           int     `json:"age" validate:"gte=13,lte=120"`
	Height        float64 `json:"height" validate:"gt=50,lt=300"`
	Weight        float64 `json:"weight" validate:"gt=20,lt=500"`
	ActivityLevel string  `json:"activityLevel" validate:"omitempty,oneof=sedentary light moderate active very_active"`
	Goal          string  `json:"goal" validate:"omitempty,oneof=lose maintain gain"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileRequest mirrors the profile form; email changes are not accepted here.
type UpdateProfileRequest struct {
	Name          string  `json:"name" validate:"required,max=120"`
	Age           int     `json:"age" validate:"gte=13,lte=120"`
	Height        float64 `json:"height" validate:"gt=50,lt=300"`
	Weight        float64 `json:"weight" validate:"gt=20,lt=500"`
	ActivityLevel string  `json:"activityLevel" validate:"oneof=sedentary light moderate active very_active"`
	Goal          string  `json:"goal" validate:"oneof=lose maintain gain"`
}

// ReminderRecipient is a user who has not logged a meal recently.
type ReminderRecipient struct {
	ID         uuid.UUID
	Email      string
	Name       string
	LastMealAt *time.Time
}
