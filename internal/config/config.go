package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	TipModel      string

	// Coach bridge
	CoachMaxAttempts    int
	CoachBackoffBase    time.Duration
	CoachRequestTimeout time.Duration
	CoachHistoryLimit   int

	// Rate limiting
	AuthRateLimit int

	// SMTP
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		DatabaseURL:         mustGetEnv("DATABASE_URL"),
		RedisURL:            mustGetEnv("REDIS_URL"),
		JWTSecret:           mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:        mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:         getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:       getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		TipModel:            getEnvOrDefault("GEMINI_TIP_MODEL", "gemini-2.5-flash"),
		CoachMaxAttempts:    getEnvAsIntOrDefault("COACH_MAX_ATTEMPTS", 5),
		CoachBackoffBase:    getEnvAsDurationOrDefault("COACH_BACKOFF_BASE", time.Second),
		CoachRequestTimeout: getEnvAsDurationOrDefault("COACH_REQUEST_TIMEOUT", 30*time.Second),
		CoachHistoryLimit:   getEnvAsIntOrDefault("COACH_HISTORY_LIMIT", 10),
		AuthRateLimit:       getEnvAsIntOrDefault("AUTH_RATE_LIMIT", 10),
		SMTPHost:            getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:            getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:            getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:            getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:            getEnvOrDefault("SMTP_FROM", "noreply@nutripal.app"),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go durations ("1500ms") or a bare number of milliseconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
