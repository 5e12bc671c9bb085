package repository

import (
	"context"

	"github.com/google/uuid"

	"nutripal-backend/internal/models"
)

type GoalRepo struct {
	db DBTX
}

func NewGoalRepo(db DBTX) *GoalRepo {
	return &GoalRepo{db: db}
}

// Upsert writes the user's targets, replacing any previous row.
func (r *GoalRepo) Upsert(ctx context.Context, g *models.Goals) error {
	query := `
		INSERT INTO user_goals (user_id, calories, protein, carbs, fat, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET calories = EXCLUDED.calories,
			protein = EXCLUDED.protein,
			carbs = EXCLUDED.carbs,
			fat = EXCLUDED.fat,
			updated_at = NOW()
		RETURNING updated_at`

	return r.db.QueryRow(ctx, query,
		g.UserID, g.Calories, g.Protein, g.Carbs, g.Fat,
	).Scan(&g.UpdatedAt)
}

func (r *GoalRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Goals, error) {
	g := &models.Goals{}
	err := r.db.QueryRow(ctx,
		`SELECT user_id, calories, protein, carbs, fat, updated_at FROM user_goals WHERE user_id = $1`,
		userID,
	).Scan(&g.UserID, &g.Calories, &g.Protein, &g.Carbs, &g.Fat, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}
