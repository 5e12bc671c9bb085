package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"nutripal-backend/internal/models"
)

type MealRepo struct {
	db DBTX
}

func NewMealRepo(db DBTX) *MealRepo {
	return &MealRepo{db: db}
}

// MealFilter narrows List. Zero values are ignored; To is exclusive.
type MealFilter struct {
	From  time.Time
	To    time.Time
	Type  string
	Limit uint64
}

const mealColumns = "id, user_id, name, calories, protein, carbs, fat, type, eaten_at, source, created_at"

func (r *MealRepo) Create(ctx context.Context, m *models.Meal) error {
	query := `
		INSERT INTO meals (id, user_id, name, calories, protein, carbs, fat, type, eaten_at, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	m.ID = uuid.New()
	if m.Source == "" {
		m.Source = models.MealSourceManual
	}

	return r.db.QueryRow(ctx, query,
		m.ID, m.UserID, m.Name, m.Calories, m.Protein, m.Carbs, m.Fat, m.Type, m.Date, m.Source,
	).Scan(&m.CreatedAt)
}

func (r *MealRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	m := &models.Meal{}
	err := r.db.QueryRow(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = $1`, id).Scan(
		&m.ID, &m.UserID, &m.Name, &m.Calories, &m.Protein, &m.Carbs, &m.Fat,
		&m.Type, &m.Date, &m.Source, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a meal owned by userID and reports whether a row went away.
func (r *MealRepo) Delete(ctx context.Context, userID, mealID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM meals WHERE id = $1 AND user_id = $2", mealID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MealRepo) List(ctx context.Context, userID uuid.UUID, f MealFilter) ([]*models.Meal, error) {
	qb := squirrel.Select(mealColumns).
		From("meals").
		// Expr keeps the uuid.UUID typed; Eq would run its driver.Valuer and send a string.
		Where(squirrel.Expr("user_id = ?", userID)).
		OrderBy("eaten_at DESC", "created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
	if !f.From.IsZero() {
		qb = qb.Where(squirrel.GtOrEq{"eaten_at": f.From})
	}
	if !f.To.IsZero() {
		qb = qb.Where(squirrel.Lt{"eaten_at": f.To})
	}
	if f.Type != "" {
		qb = qb.Where(squirrel.Eq{"type": f.Type})
	}
	if f.Limit > 0 {
		qb = qb.Limit(f.Limit)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building meal list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]*models.Meal, 0)
	for rows.Next() {
		m := &models.Meal{}
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Name, &m.Calories, &m.Protein, &m.Carbs, &m.Fat,
			&m.Type, &m.Date, &m.Source, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// TotalsBetween sums macros for meals eaten in [from, to).
func (r *MealRepo) TotalsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (models.MacroTotals, error) {
	var t models.MacroTotals
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(calories), 0), COALESCE(SUM(protein), 0),
			COALESCE(SUM(carbs), 0), COALESCE(SUM(fat), 0)
		FROM meals
		WHERE user_id = $1 AND eaten_at >= $2 AND eaten_at < $3
	`, userID, from, to).Scan(&t.Calories, &t.Protein, &t.Carbs, &t.Fat)
	return t, err
}

// DailyCalories returns calories per UTC day (YYYY-MM-DD) in [from, to).
func (r *MealRepo) DailyCalories(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]float64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(eaten_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, SUM(calories)
		FROM meals
		WHERE user_id = $1 AND eaten_at >= $2 AND eaten_at < $3
		GROUP BY day
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := make(map[string]float64)
	for rows.Next() {
		var (
			day string
			cal float64
		)
		if err := rows.Scan(&day, &cal); err != nil {
			return nil, err
		}
		byDay[day] = cal
	}
	return byDay, rows.Err()
}
