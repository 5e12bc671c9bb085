package nutrition

import (
	"math"

	"nutripal-backend/internal/models"
)

var activityFactors = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

const (
	goalAdjustmentKcal = 500
	minimumCalories    = 1200

	proteinShare = 0.30
	carbsShare   = 0.40
	fatShare     = 0.30
)

// CalculateTargets derives daily goals from a profile. BMR uses Mifflin-St Jeor
// with the midpoint of the male/female constants since the profile has no sex field.
func CalculateTargets(u *models.User) models.Goals {
	bmr := 10*u.Weight + 6.25*u.Height - 5*float64(u.Age) - 78

	factor, ok := activityFactors[u.ActivityLevel]
	if !ok {
		factor = activityFactors["moderate"]
	}
	kcal := bmr * factor

	switch u.Goal {
	case "lose":
		kcal -= goalAdjustmentKcal
	case "gain":
		kcal += goalAdjustmentKcal
	}
	if kcal < minimumCalories {
		kcal = minimumCalories
	}

	calories := int(math.Round(kcal/10) * 10)

	return models.Goals{
		UserID:   u.ID,
		Calories: calories,
		Protein:  int(math.Round(float64(calories) * proteinShare / 4)),
		Carbs:    int(math.Round(float64(calories) * carbsShare / 4)),
		Fat:      int(math.Round(float64(calories) * fatShare / 9)),
	}
}
