package nutrition

import (
	"time"

	"nutripal-backend/internal/models"
)

// DayBounds returns the UTC [start, end) range of the calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// ParseDay parses a YYYY-MM-DD string into UTC midnight.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

func SumMeals(meals []*models.Meal) models.MacroTotals {
	var totals models.MacroTotals
	for _, m := range meals {
		totals.Calories += m.Calories
		totals.Protein += m.Protein
		totals.Carbs += m.Carbs
		totals.Fat += m.Fat
	}
	return totals
}

// GroupByType buckets meals by their type; types without meals are absent.
func GroupByType(meals []*models.Meal) map[string][]*models.Meal {
	groups := make(map[string][]*models.Meal)
	for _, m := range meals {
		groups[m.Type] = append(groups[m.Type], m)
	}
	return groups
}

// WeeklyCalories returns `days` entries ending at end's day, oldest first, zero-filled.
func WeeklyCalories(byDay map[string]float64, end time.Time, days int) []models.DayCalories {
	endDay, _ := DayBounds(end)
	series := make([]models.DayCalories, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := endDay.AddDate(0, 0, -i).Format(time.DateOnly)
		series = append(series, models.DayCalories{Date: key, Calories: byDay[key]})
	}
	return series
}

// CaloriesLeft never goes below zero.
func CaloriesLeft(goals models.Goals, consumed models.MacroTotals) float64 {
	left := float64(goals.Calories) - consumed.Calories
	if left < 0 {
		return 0
	}
	return left
}

// CalorieProgress is the percentage of the calorie goal consumed, capped at 100.
func CalorieProgress(goals models.Goals, consumed models.MacroTotals) float64 {
	if goals.Calories <= 0 {
		return 0
	}
	p := consumed.Calories / float64(goals.Calories) * 100
	if p > 100 {
		return 100
	}
	return p
}
