package models

import (
	"time"

	"github.com/google/uuid"
)

// Goals are the user's daily targets.
type Goals struct {
	UserID    uuid.UUID `json:"userId"`
	Calories  int       `json:"calories" validate:"gte=800,lte=10000"`
	Protein   int       `json:"protein" validate:"gte=0,lte=1000"`
	Carbs     int       `json:"carbs" validate:"gte=0,lte=2000"`
	Fat       int       `json:"fat" validate:"gte=0,lte=1000"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MacroTotals is a sum of logged meals.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type DayCalories struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Calories float64 `json:"calories"`
}
