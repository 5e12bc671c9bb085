package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"nutripal-backend/internal/models"
	"nutripal-backend/internal/nutrition"
)

const (
	refreshTTL    = 7 * 24 * time.Hour
	resetTTL      = time.Hour
	resetCooldown = 60 * time.Second
	bcryptCost    = 12
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

type goalStore interface {
	Upsert(ctx context.Context, g *models.Goals) error
}

type tokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
}

type mailer interface {
	SendWelcomeEmail(to, name string) error
	SendPasswordResetEmail(to, token string) error
}

type AuthService struct {
	users userStore
	goals goalStore
	redis *redis.Client
	jwt   tokenIssuer
	email mailer
}

func NewAuthService(users userStore, goals goalStore, redisClient *redis.Client, jwt tokenIssuer, email mailer) *AuthService {
	return &AuthService{
		users: users,
		goals: goals,
		redis: redisClient,
		jwt:   jwt,
		email: email,
	}
}

// Register creates the account, seeds daily targets from the profile and
// signs the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *models.AuthTokens, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	fieldErrors := make(map[string]string)
	if err := ValidateStruct(req); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return nil, nil, err
		}
		fieldErrors = verr.Fields
	}
	if err := ValidatePassword(req.Password); err != nil {
		fieldErrors["password"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return nil, nil, &ValidationError{Fields: fieldErrors}
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, &ConflictError{Message: "Email already in use"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:         req.Email,
		PasswordHash:  string(hash),
		Name:          req.Name,
		Age:           req.Age,
		Height:        req.Height,
		Weight:        req.Weight,
		ActivityLevel: req.ActivityLevel,
		Goal:          req.Goal,
	}
	if user.ActivityLevel == "" {
		user.ActivityLevel = "moderate"
	}
	if user.Goal == "" {
		user.Goal = "maintain"
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	goals := nutrition.CalculateTargets(user)
	goals.UserID = user.ID
	if err := s.goals.Upsert(ctx, &goals); err != nil {
		return nil, nil, fmt.Errorf("failed to store goals: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	go func() {
		if err := s.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Warn("welcome email failed", "user", user.ID, "err", err)
		}
	}()

	return user, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Invalid email or password"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid email or password"}
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	userIDStr, err := s.redis.Get(ctx, "refresh:"+refreshToken).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	// Rotation: a refresh token is good for one exchange.
	s.redis.Del(ctx, "refresh:"+refreshToken)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Account no longer exists"}
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.redis.Del(ctx, "refresh:"+refreshToken).Err()
}

// ForgotPassword mails a reset token. Unknown addresses succeed silently so
// the endpoint cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	limitKey := "reset_limit:" + user.ID.String()
	exists, _ := s.redis.Exists(ctx, limitKey).Result()
	if exists > 0 {
		return &RateLimitError{Message: "Please wait 60 seconds before requesting another reset email"}
	}

	token, err := generateToken(32)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, "pwd_reset:"+token, user.ID.String(), resetTTL).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	s.redis.Set(ctx, limitKey, "1", resetCooldown)

	go func() {
		if err := s.email.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Warn("password reset email failed", "user", user.ID, "err", err)
		}
	}()

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := ValidatePassword(req.NewPassword); err != nil {
		return &ValidationError{Fields: map[string]string{"newPassword": err.Error()}}
	}

	invalid := &NotFoundError{Message: "Invalid or expired reset token"}

	userIDStr, err := s.redis.Get(ctx, "pwd_reset:"+req.Token).Result()
	if err != nil {
		return invalid
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return invalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invalid
		}
		return err
	}
	if user.Email != normalizeEmail(req.Email) {
		return invalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.redis.Del(ctx, "pwd_reset:"+req.Token)
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	err = s.redis.Set(ctx, "refresh:"+refreshToken, user.ID.String(), refreshTTL).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    900,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
