package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"nutripal-backend/internal/coach"
	"nutripal-backend/internal/config"
	"nutripal-backend/internal/database"
	"nutripal-backend/internal/handlers"
	"nutripal-backend/internal/middleware"
	"nutripal-backend/internal/repository"
	"nutripal-backend/internal/router"
	"nutripal-backend/internal/services"
	"nutripal-backend/internal/websocket"
	"nutripal-backend/migrations"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	setupLogger(cfg.LogLevel, cfg.Env == "production")
	log.Info("🚀 Starting NutriPal Backend...")
	log.Info("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("✗ PostgreSQL connection failed", "err", err)
	}
	defer pool.Close()
	log.Info("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatal("✗ Redis connection failed", "err", err)
	}
	defer redisClients.Close()
	log.Info("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, migrations.FS); err != nil {
		log.Fatal("✗ Database migration failed", "err", err)
	}
	log.Info("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	goalRepo := repository.NewGoalRepo(pool)
	mealRepo := repository.NewMealRepo(pool)

	// ──── Step 5: Initialize Gemini Clients ────
	geminiClient := coach.NewGeminiClient(coach.ClientConfig{
		BaseURL:        cfg.GeminiBaseURL,
		Model:          cfg.GeminiModel,
		APIKey:         cfg.GeminiAPIKey,
		MaxAttempts:    cfg.CoachMaxAttempts,
		BackoffBase:    cfg.CoachBackoffBase,
		RequestTimeout: cfg.CoachRequestTimeout,
	})
	bridge := coach.NewBridge(geminiClient, cfg.CoachHistoryLimit)
	log.Info("✓ Coach bridge ready", "model", cfg.GeminiModel)

	tipGenerator, err := services.NewGeminiTipGenerator(context.Background(), cfg.GeminiAPIKey, cfg.TipModel)
	if err != nil {
		log.Fatal("✗ Gemini tip client initialization failed", "err", err)
	}
	defer tipGenerator.Close()
	log.Info("✓ Gemini tip client initialized", "model", cfg.TipModel)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	authService := services.NewAuthService(userRepo, goalRepo, redisClients.Cache, jwtAuth, emailService)
	mealService := services.NewMealService(mealRepo, redisClients.PubSub)
	tipService := services.NewTipService(tipGenerator, redisClients.Cache, mealRepo)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo, goalRepo, mealService)
	mealHandler := handlers.NewMealHandler(mealService)
	dashboardHandler := handlers.NewDashboardHandler(userRepo, goalRepo, mealService, tipService)
	coachHandler := handlers.NewCoachHandler(bridge, userRepo, goalRepo, mealService)

	authLimiter, err := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute, redisClients.Cache)
	if err != nil {
		log.Fatal("✗ Rate limiter initialization failed", "err", err)
	}

	reminderScheduler := services.NewReminderScheduler(userRepo, emailService, redisClients.Cache)
	reminderScheduler.Start()
	log.Info("✓ Reminder scheduler started")

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Info("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authLimiter,
		authHandler,
		userHandler,
		mealHandler,
		dashboardHandler,
		coachHandler,
		wsHub,
		cfg.FrontendURL,
	)

	// A coach turn can spend several backoff rounds upstream before answering.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		reminderScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("✓ NutriPal Backend ready on http://localhost:%s", cfg.Port)
	log.Infof("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Infof("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server error", "err", err)
	}
}

func setupLogger(level string, json bool) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	log.SetReportTimestamp(true)
	log.SetTimeFormat("15:04:05")
	if json {
		log.SetFormatter(log.JSONFormatter)
	}
}
