package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestJWTAuth_RoundTrip(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	userID := uuid.New()

	token, err := auth.GenerateAccessToken(userID, "mock@nutripal.app")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	var gotID uuid.UUID
	h := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if gotID != userID {
		t.Fatalf("expected user %s in context, got %s", userID, gotID)
	}
}

func TestJWTAuth_Rejections(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	other := NewJWTAuth("other-secret")
	foreign, _ := other.GenerateAccessToken(uuid.New(), "x@nutripal.app")

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}).SignedString(auth.Secret)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"missing header", "", "UNAUTHORIZED"},
		{"not bearer", "Basic abc", "UNAUTHORIZED"},
		{"wrong secret", "Bearer " + foreign, "UNAUTHORIZED"},
		{"expired", "Bearer " + expired, "TOKEN_EXPIRED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			auth.Middleware(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Error.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, body.Error.Code)
			}
		})
	}
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	mw, err := NewRateLimiter(2, time.Minute, nil)
	if err != nil {
		t.Fatalf("NewRateLimiter() error = %v", err)
	}
	h := mw(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	// A different client has its own budget.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "198.51.100.1:5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected generated request id to be echoed, got %q / %q", seen, rr.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected incoming request id to be kept")
	}
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:5173")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/meals", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected preflight %d, got %d", http.StatusNoContent, rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("expected allow-origin header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/meals", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req.WithContext(context.Background()))
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected allow-origin for foreign origin")
	}
}
