package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"nutripal-backend/internal/models"
)

func TestDashboardHandler_Get(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)
	meals := &stubMealService{
		totals: models.MacroTotals{Calories: 1500, Protein: 90, Carbs: 160, Fat: 50},
		weekly: []models.DayCalories{{Date: "2026-10-19", Calories: 1500}},
		list:   []*models.Meal{{Name: "Oats"}},
	}
	h := NewDashboardHandler(
		&stubUserRepo{user: mockUser(userID)},
		&stubGoalRepo{goals: &models.Goals{UserID: userID, Calories: 2000, Protein: 150, Carbs: 200, Fat: 70}},
		meals,
		stubTips{tip: "Drink more water."},
	)
	h.now = func() time.Time { return day }

	rr := httptest.NewRecorder()
	h.Get(rr, authedRequest(http.MethodGet, "/api/v1/dashboard", "", userID))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var payload struct {
		Date         string               `json:"date"`
		CaloriesLeft float64              `json:"calories_left"`
		Progress     float64              `json:"progress"`
		Weekly       []models.DayCalories `json:"weekly"`
		RecentMeals  []*models.Meal       `json:"recent_meals"`
		HealthTip    string               `json:"health_tip"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Date != "2026-10-19" || payload.CaloriesLeft != 500 || payload.Progress != 75 {
		t.Fatalf("unexpected summary %+v", payload)
	}
	if payload.HealthTip != "Drink more water." || len(payload.Weekly) != 1 || len(payload.RecentMeals) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if !meals.totalsDay.Equal(day) {
		t.Fatalf("expected totals for %s, got %s", day, meals.totalsDay)
	}
}

func TestDashboardHandler_UnknownUser(t *testing.T) {
	h := NewDashboardHandler(&stubUserRepo{}, &stubGoalRepo{}, &stubMealService{}, stubTips{})

	rr := httptest.NewRecorder()
	h.Get(rr, authedRequest(http.MethodGet, "/api/v1/dashboard", "", uuid.New()))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
