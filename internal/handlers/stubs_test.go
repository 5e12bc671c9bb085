package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"nutripal-backend/internal/coach"
	"nutripal-backend/internal/middleware"
	"nutripal-backend/internal/models"
	"nutripal-backend/internal/services"
)

type stubUserRepo struct {
	user       *models.User
	updateErr  error
	updated    bool
	updatedID  uuid.UUID
	updatedPwd string
	profile    *models.User
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *s.user
	return &cp, nil
}

func (s *stubUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	s.profile = user
	return s.updateErr
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	s.updated = true
	s.updatedID = userID
	s.updatedPwd = passwordHash
	return s.updateErr
}

type stubGoalRepo struct {
	goals    *models.Goals
	upserted *models.Goals
}

func (s *stubGoalRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Goals, error) {
	if s.goals == nil {
		return nil, pgx.ErrNoRows
	}
	return s.goals, nil
}

func (s *stubGoalRepo) Upsert(ctx context.Context, g *models.Goals) error {
	s.upserted = g
	return nil
}

type stubMealService struct {
	created   []models.MealInput
	sources   []string
	createErr error
	deleteErr error
	list      []*models.Meal
	listDay   time.Time
	totals    models.MacroTotals
	totalsDay time.Time
	weekly    []models.DayCalories
}

func (s *stubMealService) Create(ctx context.Context, userID uuid.UUID, in models.MealInput, source string) (*models.Meal, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, in)
	s.sources = append(s.sources, source)
	return &models.Meal{
		ID: uuid.New(), UserID: userID, Name: in.Name, Calories: in.Calories,
		Protein: in.Protein, Carbs: in.Carbs, Fat: in.Fat, Type: in.Type, Date: in.Date, Source: source,
	}, nil
}

func (s *stubMealService) Get(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error) {
	for _, m := range s.list {
		if m.ID == mealID {
			return m, nil
		}
	}
	return nil, &services.NotFoundError{Message: "Meal not found"}
}

func (s *stubMealService) Delete(ctx context.Context, userID, mealID uuid.UUID) error {
	return s.deleteErr
}

func (s *stubMealService) ListDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*models.Meal, error) {
	s.listDay = day
	return s.list, nil
}

func (s *stubMealService) Recent(ctx context.Context, userID uuid.UUID, limit uint64) ([]*models.Meal, error) {
	return s.list, nil
}

func (s *stubMealService) TotalsOn(ctx context.Context, userID uuid.UUID, day time.Time) (models.MacroTotals, error) {
	s.totalsDay = day
	return s.totals, nil
}

func (s *stubMealService) WeeklyCalories(ctx context.Context, userID uuid.UUID, end time.Time) ([]models.DayCalories, error) {
	return s.weekly, nil
}

type stubTips struct{ tip string }

func (s stubTips) DailyTip(ctx context.Context, userID uuid.UUID, goals models.Goals, today time.Time) string {
	return s.tip
}

type stubAuthService struct {
	registerErr error
	resetReq    models.ResetPasswordRequest
}

func (s *stubAuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *models.AuthTokens, error) {
	if s.registerErr != nil {
		return nil, nil, s.registerErr
	}
	return &models.User{ID: uuid.New(), Email: req.Email, Name: req.Name},
		&models.AuthTokens{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	return nil, &services.UnauthorizedError{Message: "Invalid email or password"}
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	return &models.AuthTokens{AccessToken: "access2", RefreshToken: "refresh2", ExpiresIn: 900}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error { return nil }

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error { return nil }

func (s *stubAuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	s.resetReq = req
	return nil
}

type stubBridge struct {
	out     *coach.Outcome
	err     error
	cc      models.CoachingContext
	history []models.ChatMessage
	create  bool
}

func (s *stubBridge) Converse(ctx context.Context, history []models.ChatMessage, cc models.CoachingContext, createMeal coach.MealCreator) (*coach.Outcome, error) {
	s.cc = cc
	s.history = history
	if s.create && s.err == nil {
		meal, err := createMeal(ctx, models.MealInput{Name: "2 eggs", Calories: 150, Type: "breakfast", Date: cc.ActiveDate})
		if err != nil {
			return nil, &coach.ActionMutationError{Err: err}
		}
		s.out.Meal = meal
	}
	return s.out, s.err
}

func mockUser(id uuid.UUID) *models.User {
	return &models.User{
		ID: id, Email: "mock@nutripal.app", Name: "Mock User",
		Age: 30, Height: 175, Weight: 70, ActivityLevel: "moderate", Goal: "maintain",
	}
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	req.Header.Set("Content-Type", "application/json")
	return req
}
