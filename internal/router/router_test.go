package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutripal-backend/internal/handlers"
	"nutripal-backend/internal/middleware"
	"nutripal-backend/internal/websocket"
)

func newTestRouter(t *testing.T) (http.Handler, *middleware.JWTAuth) {
	t.Helper()
	jwtAuth := middleware.NewJWTAuth("router-test-secret")
	limiter, err := middleware.NewRateLimiter(2, time.Minute, nil)
	require.NoError(t, err)

	// Handlers are never reached in these tests, only the routing and guards are.
	r := New(
		jwtAuth,
		limiter,
		handlers.NewAuthHandler(nil),
		handlers.NewUserHandler(nil, nil, nil),
		handlers.NewMealHandler(nil),
		handlers.NewDashboardHandler(nil, nil, nil, nil),
		handlers.NewCoachHandler(nil, nil, nil, nil),
		websocket.NewHub(nil, jwtAuth),
		"http://localhost:5173",
	)
	return r, jwtAuth
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodPut, "/api/v1/goals"},
		{http.MethodGet, "/api/v1/meals"},
		{http.MethodPost, "/api/v1/meals"},
		{http.MethodGet, "/api/v1/meals/" + uuid.NewString()},
		{http.MethodDelete, "/api/v1/meals/" + uuid.NewString()},
		{http.MethodGet, "/api/v1/dashboard"},
		{http.MethodPost, "/api/v1/coach/chat"},
		{http.MethodPost, "/api/v1/auth/logout"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}")))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRouter_WebSocketRejectsMissingToken(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_AuthRoutesAreRateLimited(t *testing.T) {
	r, _ := newTestRouter(t)

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("not json"))
		req.RemoteAddr = "203.0.113.7:5000"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}
