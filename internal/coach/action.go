package coach

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"nutripal-backend/internal/models"
)

const actionLogMeal = "log_meal"

type actionPayload struct {
	Action string      `json:"action"`
	Meal   *actionMeal `json:"meal"`
}

type actionMeal struct {
	Name     string   `json:"name" validate:"required"`
	Calories *float64 `json:"calories" validate:"required,gte=0"`
	Protein  *float64 `json:"protein" validate:"omitempty,gte=0"`
	Carbs    *float64 `json:"carbs" validate:"omitempty,gte=0"`
	Fat      *float64 `json:"fat" validate:"omitempty,gte=0"`
	Type     string   `json:"type" validate:"required,oneof=breakfast lunch dinner snack"`
	Date     string   `json:"date"`
}

// parseAction reports whether text is exactly a log_meal action payload.
// Anything else, well-formed JSON included, is a plain reply.
func parseAction(v *validator.Validate, text string) (*actionMeal, bool) {
	raw := strings.TrimSpace(text)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "{") {
		return nil, false
	}

	var payload actionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false
	}
	if payload.Action != actionLogMeal || payload.Meal == nil {
		return nil, false
	}
	payload.Meal.Name = strings.TrimSpace(payload.Meal.Name)
	payload.Meal.Type = strings.ToLower(strings.TrimSpace(payload.Meal.Type))
	if err := v.Struct(payload.Meal); err != nil {
		return nil, false
	}
	return payload.Meal, true
}

// toInput converts the parsed meal, falling back to day when it carries no usable date.
func (m *actionMeal) toInput(day time.Time) models.MealInput {
	in := models.MealInput{
		Name:     m.Name,
		Calories: deref(m.Calories),
		Protein:  deref(m.Protein),
		Carbs:    deref(m.Carbs),
		Fat:      deref(m.Fat),
		Type:     m.Type,
		Date:     day,
	}
	if d, ok := parseMealDate(m.Date); ok {
		in.Date = d
	}
	return in
}

func parseMealDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
