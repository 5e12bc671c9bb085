package nutrition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutripal-backend/internal/models"
)

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	start, end := DayBounds(time.Date(2026, 10, 19, 2, 0, 0, 0, loc))

	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), end)
}

func TestSumAndGroupMeals(t *testing.T) {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	today := []*models.Meal{
		{Name: "Mock Breakfast", Calories: 450, Protein: 30, Carbs: 50, Fat: 15, Type: "breakfast", Date: day.Add(8 * time.Hour)},
		{Name: "Mock Lunch", Calories: 650, Protein: 40, Carbs: 70, Fat: 25, Type: "lunch", Date: day.Add(13 * time.Hour)},
	}

	assert.Equal(t, models.MacroTotals{Calories: 1100, Protein: 70, Carbs: 120, Fat: 40}, SumMeals(today))
	assert.Equal(t, models.MacroTotals{}, SumMeals(nil))

	groups := GroupByType(today)
	assert.Len(t, groups["breakfast"], 1)
	assert.Len(t, groups["lunch"], 1)
	_, hasDinner := groups["dinner"]
	assert.False(t, hasDinner)
}

func TestWeeklyCalories(t *testing.T) {
	end := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	series := WeeklyCalories(map[string]float64{
		"2026-10-19": 1800,
		"2026-10-13": 2100,
		"2026-10-01": 5000,
	}, end, 7)

	require.Len(t, series, 7)
	assert.Equal(t, models.DayCalories{Date: "2026-10-13", Calories: 2100}, series[0])
	assert.Equal(t, models.DayCalories{Date: "2026-10-16", Calories: 0}, series[3])
	assert.Equal(t, models.DayCalories{Date: "2026-10-19", Calories: 1800}, series[6])
}

func TestCaloriesLeftAndProgress(t *testing.T) {
	goals := models.Goals{Calories: 2000}

	assert.Equal(t, 500.0, CaloriesLeft(goals, models.MacroTotals{Calories: 1500}))
	assert.Equal(t, 0.0, CaloriesLeft(goals, models.MacroTotals{Calories: 2600}))
	assert.Equal(t, 75.0, CalorieProgress(goals, models.MacroTotals{Calories: 1500}))
	assert.Equal(t, 100.0, CalorieProgress(goals, models.MacroTotals{Calories: 2600}))
	assert.Equal(t, 0.0, CalorieProgress(models.Goals{}, models.MacroTotals{Calories: 10}))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("28/02/2026")
	assert.Error(t, err)
}
