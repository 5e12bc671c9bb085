package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"nutripal-backend/internal/middleware"
	"nutripal-backend/internal/models"
	"nutripal-backend/internal/nutrition"
	"nutripal-backend/internal/services"
)

type userRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

type goalRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Goals, error)
	Upsert(ctx context.Context, g *models.Goals) error
}

type mealLister interface {
	ListDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*models.Meal, error)
}

type UserHandler struct {
	userRepo userRepository
	goalRepo goalRepository
	meals    mealLister
	now      func() time.Time
}

func NewUserHandler(userRepo userRepository, goalRepo goalRepository, meals mealLister) *UserHandler {
	return &UserHandler{userRepo: userRepo, goalRepo: goalRepo, meals: meals, now: time.Now}
}

// GetMe returns everything the app needs on start: profile, targets and
// today's meals.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	goals, err := loadGoals(r.Context(), h.goalRepo, user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	meals, err := h.meals.ListDay(r.Context(), userID, clock(h.now)())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"goals": goals,
		"meals": meals,
	})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := services.ValidateStruct(req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	user.Name = req.Name
	user.Age = req.Age
	user.Height = req.Height
	user.Weight = req.Weight
	user.ActivityLevel = req.ActivityLevel
	user.Goal = req.Goal

	if err := h.userRepo.UpdateProfile(r.Context(), user); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update profile", r))
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var goals models.Goals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := services.ValidateStruct(goals); err != nil {
		handleServiceError(w, r, err)
		return
	}
	goals.UserID = userID

	if err := h.goalRepo.Upsert(r.Context(), &goals); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update goals", r))
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := services.ValidatePassword(req.NewPassword); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"new_password": err.Error()}, r))
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Current password is incorrect", r))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to hash password", r))
		return
	}

	if err := h.userRepo.UpdatePassword(r.Context(), userID, string(hash)); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update password", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// loadGoals falls back to targets computed from the profile when the user
// has never saved any.
func loadGoals(ctx context.Context, repo goalRepository, user *models.User) (models.Goals, error) {
	goals, err := repo.GetByUser(ctx, user.ID)
	if err == nil {
		return *goals, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Goals{}, err
	}
	computed := nutrition.CalculateTargets(user)
	computed.UserID = user.ID
	return computed, nil
}

// dayParam reads a YYYY-MM-DD query value, defaulting to today.
func dayParam(r *http.Request, key string, now func() time.Time) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return clock(now)(), nil
	}
	return nutrition.ParseDay(v)
}

func clock(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
