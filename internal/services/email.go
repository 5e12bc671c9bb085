package services

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type EmailService struct {
	host        string
	port        string
	user        string
	pass        string
	from        string
	frontendURL string
	devMode     bool
}

func NewEmailService(host, port, user, pass, from, frontendURL string) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		log.Warn("email service running in dev mode, messages are logged instead of sent")
	}
	return &EmailService{
		host:        host,
		port:        port,
		user:        user,
		pass:        pass,
		from:        from,
		frontendURL: frontendURL,
		devMode:     devMode,
	}
}

const emailLayout = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f0fdf4;">
  <div style="max-width: 480px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: #16a34a; padding: 32px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 24px; font-weight: 700;">NutriPal</h1>
    </div>
    <div style="padding: 32px;">
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #1e293b;">%s</h2>
      <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0 0 24px;">%s</p>
      <a href="%s" style="display: inline-block; background: #16a34a; color: white; text-decoration: none; padding: 12px 32px; border-radius: 8px; font-weight: 600; font-size: 14px;">%s</a>
      <p style="color: #94a3b8; font-size: 12px; margin: 24px 0 0; line-height: 1.5;">%s</p>
    </div>
  </div>
</body>
</html>`

func (s *EmailService) SendWelcomeEmail(to, name string) error {
	body := fmt.Sprintf(emailLayout,
		fmt.Sprintf("Welcome, %s!", name),
		"Your daily targets are ready. Log a meal or ask your AI coach what to eat next.",
		s.frontendURL+"/dashboard",
		"Open Dashboard",
		"You are receiving this because you created a NutriPal account.",
	)
	return s.sendHTML(to, "Welcome to NutriPal", body)
}

func (s *EmailService) SendPasswordResetEmail(to, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	body := fmt.Sprintf(emailLayout,
		"Reset Your Password",
		"We received a request to reset your password. Click the button below to create a new one.",
		resetURL,
		"Reset Password",
		"If you didn't request this, you can safely ignore this email. This link expires in 1 hour.",
	)
	return s.sendHTML(to, "Reset your NutriPal password", body)
}

func (s *EmailService) SendLoggingReminderEmail(to, name string, lastMealAt *time.Time) error {
	message := "You haven't logged any meals yet. Tell your AI coach what you ate and it will do the rest."
	if lastMealAt != nil {
		message = fmt.Sprintf("Your last meal was logged on %s. A quick entry keeps your daily totals honest.",
			lastMealAt.Format("Monday, Jan 2"))
	}
	body := fmt.Sprintf(emailLayout,
		fmt.Sprintf("We miss you, %s", name),
		message,
		s.frontendURL+"/dashboard",
		"Log a Meal",
		"You are receiving this because you have a NutriPal account.",
	)
	return s.sendHTML(to, "Don't forget to log your meals", body)
}

func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	if s.devMode {
		log.Info("dev email", "to", to, "subject", subject)
		log.Debug("dev email body", "body", htmlBody)
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Info("email sent", "to", to, "subject", subject)
	return nil
}
