package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MealSourceManual = "manual"
	MealSourceCoach  = "coach"
)

var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

type Meal struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	Type      string    `json:"type"`
	Date      time.Time `json:"date"`
	Source    string    `json:"source"` // "manual", "coach"
	CreatedAt time.Time `json:"created_at"`
}

// MealInput is a meal before it is stored. A zero Date means "today".
type MealInput struct {
	Name     string    `json:"name" validate:"required,max=200"`
	Calories float64   `json:"calories" validate:"gte=0"`
	Protein  float64   `json:"protein" validate:"gte=0"`
	Carbs    float64   `json:"carbs" validate:"gte=0"`
	Fat      float64   `json:"fat" validate:"gte=0"`
	Type     string    `json:"type" validate:"required,oneof=breakfast lunch dinner snack"`
	Date     time.Time `json:"date"`
}
