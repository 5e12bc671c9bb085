package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"nutripal-backend/internal/coach"
	"nutripal-backend/internal/middleware"
	"nutripal-backend/internal/models"
	"nutripal-backend/internal/nutrition"
)

type coachBridge interface {
	Converse(ctx context.Context, history []models.ChatMessage, cc models.CoachingContext, createMeal coach.MealCreator) (*coach.Outcome, error)
}

type coachMeals interface {
	Create(ctx context.Context, userID uuid.UUID, in models.MealInput, source string) (*models.Meal, error)
	TotalsOn(ctx context.Context, userID uuid.UUID, day time.Time) (models.MacroTotals, error)
}

type CoachHandler struct {
	bridge   coachBridge
	userRepo userRepository
	goalRepo goalRepository
	meals    coachMeals
	now      func() time.Time
}

func NewCoachHandler(bridge coachBridge, userRepo userRepository, goalRepo goalRepository, meals coachMeals) *CoachHandler {
	return &CoachHandler{bridge: bridge, userRepo: userRepo, goalRepo: goalRepo, meals: meals, now: time.Now}
}

// Chat answers one coach turn. Bridge failures still produce a 200 with a
// fallback reply so the client can append it to the transcript.
func (h *CoachHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if len(req.History) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "History is required", r))
		return
	}

	day := clock(h.now)()
	if req.Date != "" {
		d, err := nutrition.ParseDay(req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date must be YYYY-MM-DD", r))
			return
		}
		day = d
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}
	goals, err := loadGoals(ctx, h.goalRepo, user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	consumed, err := h.meals.TotalsOn(ctx, userID, day)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	cc := models.CoachingContext{
		Name:       user.Name,
		Age:        user.Age,
		Height:     user.Height,
		Weight:     user.Weight,
		Goal:       user.Goal,
		Targets:    goals,
		Consumed:   consumed,
		ActiveDate: day,
	}

	createMeal := func(ctx context.Context, in models.MealInput) (*models.Meal, error) {
		return h.meals.Create(ctx, userID, in, models.MealSourceCoach)
	}

	out, err := h.bridge.Converse(ctx, req.History, cc, createMeal)
	if err != nil {
		if errors.Is(err, coach.ErrEmptyHistory) {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "History is required", r))
			return
		}
		log.Warn("coach turn failed", "user", userID, "code", coach.ErrorCode(err), "err", err)
		writeJSON(w, http.StatusOK, models.ChatResponse{
			Reply:     coach.FallbackReply(err),
			ErrorCode: coach.ErrorCode(err),
		})
		return
	}

	resp := models.ChatResponse{Reply: out.Text}
	if out.Kind == coach.ActionConfirmed {
		resp.Action = "log_meal"
		resp.Meal = out.Meal
	}
	writeJSON(w, http.StatusOK, resp)
}
