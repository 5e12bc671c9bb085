package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nutripal-backend/internal/middleware"
	"nutripal-backend/internal/models"
	"nutripal-backend/internal/nutrition"
)

const recentMealsLimit = 5

type dashboardMeals interface {
	TotalsOn(ctx context.Context, userID uuid.UUID, day time.Time) (models.MacroTotals, error)
	WeeklyCalories(ctx context.Context, userID uuid.UUID, end time.Time) ([]models.DayCalories, error)
	Recent(ctx context.Context, userID uuid.UUID, limit uint64) ([]*models.Meal, error)
}

type tipProvider interface {
	DailyTip(ctx context.Context, userID uuid.UUID, goals models.Goals, today time.Time) string
}

type DashboardHandler struct {
	userRepo userRepository
	goalRepo goalRepository
	meals    dashboardMeals
	tips     tipProvider
	now      func() time.Time
}

func NewDashboardHandler(userRepo userRepository, goalRepo goalRepository, meals dashboardMeals, tips tipProvider) *DashboardHandler {
	return &DashboardHandler{userRepo: userRepo, goalRepo: goalRepo, meals: meals, tips: tips, now: time.Now}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	day, err := dayParam(r, "date", h.now)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date must be YYYY-MM-DD", r))
		return
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

	weekly, err := h.meals.WeeklyCalories(ctx, userID, day)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	recent, err := h.meals.Recent(ctx, userID, recentMealsLimit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":          day.Format(time.DateOnly),
		"goals":         goals,
		"consumed":      consumed,
		"calories_left": nutrition.CaloriesLeft(goals, consumed),
		"progress":      nutrition.CalorieProgress(goals, consumed),
		"weekly":        weekly,
		"recent_meals":  recent,
		"health_tip":    h.tips.DailyTip(ctx, userID, goals, day),
	})
}
