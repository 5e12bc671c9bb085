package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"nutripal-backend/internal/handlers"
	"nutripal-backend/internal/middleware"
	"nutripal-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authLimiter func(http.Handler) http.Handler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	mealHandler *handlers.MealHandler,
	dashboardHandler *handlers.DashboardHandler,
	coachHandler *handlers.CoachHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// ──── Profile & Goals ────
			r.Get("/me", userHandler.GetMe)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Put("/goals", userHandler.UpdateGoals)
			r.Put("/password", userHandler.ChangePassword)

			// ──── Meals ────
			r.Route("/meals", func(r chi.Router) {
				r.Get("/", mealHandler.List)
				r.Post("/", mealHandler.Create)
				r.Get("/{id}", mealHandler.Get)
				r.Delete("/{id}", mealHandler.Delete)
			})

			r.Get("/dashboard", dashboardHandler.Get)

			// ──── Coach ────
			r.Post("/coach/chat", coachHandler.Chat)
		})

		// ──── WebSocket (token in query) ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
