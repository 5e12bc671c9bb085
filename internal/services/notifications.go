package services

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nutripal-backend/internal/models"
)

const (
	inactivityWindow     = 48 * time.Hour
	reminderCooldown     = 72 * time.Hour
	reminderPollInterval = time.Hour
)

type inactiveUserLister interface {
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]models.ReminderRecipient, error)
}

type reminderMailer interface {
	SendLoggingReminderEmail(to, name string, lastMealAt *time.Time) error
}

// ReminderScheduler emails users who stopped logging meals. At most one
// reminder per user per cooldown, tracked in Redis so several instances
// can run the loop.
type ReminderScheduler struct {
	users    inactiveUserLister
	email    reminderMailer
	redis    *redis.Client
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewReminderScheduler(users inactiveUserLister, email reminderMailer, redisClient *redis.Client) *ReminderScheduler {
	return &ReminderScheduler{
		users:    users,
		email:    email,
		redis:    redisClient,
		interval: reminderPollInterval,
		stopChan: make(chan struct{}),
	}
}

func (s *ReminderScheduler) Start() {
	if s.users == nil || s.email == nil || s.redis == nil {
		return
	}
	go s.loop()
}

func (s *ReminderScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *ReminderScheduler) loop() {
	// Run on startup as well as by interval.
	s.SendLoggingReminders(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.SendLoggingReminders(context.Background(), time.Now().UTC())
		}
	}
}

// SendLoggingReminders runs one pass and returns how many emails went out.
func (s *ReminderScheduler) SendLoggingReminders(ctx context.Context, now time.Time) int {
	recipients, err := s.users.ListInactiveSince(ctx, now.Add(-inactivityWindow))
	if err != nil {
		log.Error("logging reminders: failed to list recipients", "err", err)
		return 0
	}

	sent := 0
	for _, rcpt := range recipients {
		key := reminderKey(rcpt.ID)
		claimed, err := s.redis.SetNX(ctx, key, now.Format(time.RFC3339), reminderCooldown).Result()
		if err != nil {
			log.Warn("logging reminders: failed to claim", "user", rcpt.ID, "err", err)
			continue
		}
		if !claimed {
			continue
		}

		if err := s.email.SendLoggingReminderEmail(rcpt.Email, rcpt.Name, rcpt.LastMealAt); err != nil {
			log.Warn("logging reminders: failed to send", "to", rcpt.Email, "err", err)
			// Release the claim so the next pass retries.
			s.redis.Del(ctx, key)
			continue
		}
		sent++
	}
	return sent
}

func reminderKey(userID uuid.UUID) string {
	return "reminder_sent:" + userID.String()
}
