package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
		{"uses default for non-positive", "TEST_INT_4", "-3", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal time.Duration
		expected   time.Duration
	}{
		{"parses go duration", "TEST_DUR_1", "250ms", time.Second, 250 * time.Millisecond},
		{"parses bare milliseconds", "TEST_DUR_2", "1500", time.Second, 1500 * time.Millisecond},
		{"uses default for empty", "TEST_DUR_3", "", time.Second, time.Second},
		{"uses default for garbage", "TEST_DUR_4", "soon", time.Second, time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsDurationOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for key, val := range map[string]string{
		"DATABASE_URL":   "postgres://localhost/nutripal",
		"REDIS_URL":      "redis://localhost:6379/0",
		"JWT_SECRET":     "secret",
		"GEMINI_API_KEY": "key",
	} {
		os.Setenv(key, val)
		defer os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.CoachMaxAttempts != 5 {
		t.Errorf("Expected 5 coach attempts, got %d", cfg.CoachMaxAttempts)
	}
	if cfg.CoachBackoffBase != time.Second {
		t.Errorf("Expected 1s backoff base, got %s", cfg.CoachBackoffBase)
	}
	if cfg.CoachHistoryLimit != 10 {
		t.Errorf("Expected history limit 10, got %d", cfg.CoachHistoryLimit)
	}
	if cfg.GeminiBaseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Errorf("Unexpected Gemini base URL %q", cfg.GeminiBaseURL)
	}
}
