package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nutripal-backend/internal/models"
)

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, name, age, height, weight, activity_level, goal, created_at`

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, age, height, weight, activity_level, goal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	user.ID = uuid.New()

	return r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name,
		user.Age, user.Height, user.Weight, user.ActivityLevel, user.Goal,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Age,
		&user.Height, &user.Weight, &user.ActivityLevel, &user.Goal, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET name = $1, age = $2, height = $3, weight = $4, activity_level = $5, goal = $6
		 WHERE id = $7`,
		user.Name, user.Age, user.Height, user.Weight, user.ActivityLevel, user.Goal, user.ID,
	)
	return err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID)
	return err
}

// ListInactiveSince returns users registered before cutoff whose latest meal,
// if any, is older than cutoff.
func (r *UserRepo) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]models.ReminderRecipient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.email, u.name, MAX(m.eaten_at)
		FROM users u
		LEFT JOIN meals m ON m.user_id = u.id
		WHERE u.created_at < $1
		GROUP BY u.id, u.email, u.name
		HAVING MAX(m.eaten_at) IS NULL OR MAX(m.eaten_at) < $1`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list inactive users: %w", err)
	}
	defer rows.Close()

	var recipients []models.ReminderRecipient
	for rows.Next() {
		var rcpt models.ReminderRecipient
		if err := rows.Scan(&rcpt.ID, &rcpt.Email, &rcpt.Name, &rcpt.LastMealAt); err != nil {
			return nil, err
		}
		recipients = append(recipients, rcpt)
	}
	return recipients, rows.Err()
}
