package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nutripal-backend/internal/middleware"
	"nutripal-backend/internal/models"
	"nutripal-backend/internal/nutrition"
)

type mealService interface {
	Create(ctx context.Context, userID uuid.UUID, in models.MealInput, source string) (*models.Meal, error)
	Get(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error)
	Delete(ctx context.Context, userID, mealID uuid.UUID) error
	ListDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*models.Meal, error)
}

type MealHandler struct {
	meals mealService
	now   func() time.Time
}

func NewMealHandler(meals mealService) *MealHandler {
	return &MealHandler{meals: meals, now: time.Now}
}

// mealRequest accepts dates as YYYY-MM-DD or RFC 3339.
type mealRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Type     string  `json:"type"`
	Date     string  `json:"date"`
}

func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	day, err := dayParam(r, "date", h.now)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date must be YYYY-MM-DD", r))
		return
	}

	meals, err := h.meals.ListDay(r.Context(), userID, day)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    day.Format(time.DateOnly),
		"meals":   meals,
		"totals":  nutrition.SumMeals(meals),
		"by_type": nutrition.GroupByType(meals),
	})
}

func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req mealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	in := models.MealInput{
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Type:     req.Type,
	}
	if req.Date != "" {
		d, err := parseMealDate(req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"date": "Must be YYYY-MM-DD or an RFC 3339 timestamp"}, r))
			return
		}
		in.Date = d
	}

	meal, err := h.meals.Create(r.Context(), userID, in, models.MealSourceManual)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, meal)
}

func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	mealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid meal ID", r))
		return
	}

	meal, err := h.meals.Get(r.Context(), middleware.GetUserID(r.Context()), mealID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, meal)
}

func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	mealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid meal ID", r))
		return
	}

	if err := h.meals.Delete(r.Context(), middleware.GetUserID(r.Context()), mealID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Meal deleted"})
}

func parseMealDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return nutrition.ParseDay(s)
}
