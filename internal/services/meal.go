package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"nutripal-backend/internal/models"
	"nutripal-backend/internal/nutrition"
	"nutripal-backend/internal/repository"
	"nutripal-backend/internal/websocket"
)

const weekDays = 7

type mealStore interface {
	Create(ctx context.Context, m *models.Meal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meal, error)
	Delete(ctx context.Context, userID, mealID uuid.UUID) (bool, error)
	List(ctx context.Context, userID uuid.UUID, f repository.MealFilter) ([]*models.Meal, error)
	TotalsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (models.MacroTotals, error)
	DailyCalories(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]float64, error)
}

type MealService struct {
	meals  mealStore
	pubsub *redis.Client
	now    func() time.Time
}

func NewMealService(meals mealStore, pubsub *redis.Client) *MealService {
	return &MealService{meals: meals, pubsub: pubsub, now: time.Now}
}

// Create validates and stores a meal, then notifies the user's open sockets.
func (s *MealService) Create(ctx context.Context, userID uuid.UUID, in models.MealInput, source string) (*models.Meal, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	meal := &models.Meal{
		UserID:   userID,
		Name:     in.Name,
		Calories: in.Calories,
		Protein:  in.Protein,
		Carbs:    in.Carbs,
		Fat:      in.Fat,
		Type:     in.Type,
		Date:     in.Date.UTC(),
		Source:   source,
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to store meal: %w", err)
	}

	s.PublishUpdate(ctx, userID, models.WSMessage{
		Type:    "meal_logged",
		Payload: models.MealEvent{MealID: meal.ID, UserID: userID, Meal: meal},
	})
	return meal, nil
}

// Get returns one of the user's meals. Meals of other users are reported as missing.
func (s *MealService) Get(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error) {
	meal, err := s.meals.GetByID(ctx, mealID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && meal.UserID != userID) {
		return nil, &NotFoundError{Message: "Meal not found"}
	}
	if err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *MealService) Delete(ctx context.Context, userID, mealID uuid.UUID) error {
	deleted, err := s.meals.Delete(ctx, userID, mealID)
	if err != nil {
		return err
	}
	if !deleted {
		return &NotFoundError{Message: "Meal not found"}
	}

	s.PublishUpdate(ctx, userID, models.WSMessage{
		Type:    "meal_deleted",
		Payload: models.MealEvent{MealID: mealID, UserID: userID},
	})
	return nil
}

// ListDay returns the meals eaten on day's UTC date, newest first.
func (s *MealService) ListDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*models.Meal, error) {
	from, to := nutrition.DayBounds(day)
	return s.meals.List(ctx, userID, repository.MealFilter{From: from, To: to})
}

func (s *MealService) Recent(ctx context.Context, userID uuid.UUID, limit uint64) ([]*models.Meal, error) {
	return s.meals.List(ctx, userID, repository.MealFilter{Limit: limit})
}

// TotalsOn sums what the user ate on day.
func (s *MealService) TotalsOn(ctx context.Context, userID uuid.UUID, day time.Time) (models.MacroTotals, error) {
	from, to := nutrition.DayBounds(day)
	return s.meals.TotalsBetween(ctx, userID, from, to)
}

func (s *MealService) TodayTotals(ctx context.Context, userID uuid.UUID) (models.MacroTotals, error) {
	return s.TotalsOn(ctx, userID, s.now())
}

// WeeklyCalories returns the seven days ending on end, oldest first.
func (s *MealService) WeeklyCalories(ctx context.Context, userID uuid.UUID, end time.Time) ([]models.DayCalories, error) {
	_, to := nutrition.DayBounds(end)
	from := to.AddDate(0, 0, -weekDays)

	byDay, err := s.meals.DailyCalories(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return nutrition.WeeklyCalories(byDay, end, weekDays), nil
}

// PublishUpdate sends a WebSocket update via Redis pub/sub.
func (s *MealService) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	if s.pubsub == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.pubsub.Publish(ctx, websocket.UserChannel(userID), string(data)).Err(); err != nil {
		log.Warn("publish update failed", "user", userID, "type", msg.Type, "err", err)
	}
}
