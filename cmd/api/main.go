package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/MyatBhoneThet/ai-receptionist/internal/api/router"
	"github.com/MyatBhoneThet/ai-receptionist/internal/bookings"
	appconfig "github.com/MyatBhoneThet/ai-receptionist/internal/config"
	"github.com/MyatBhoneThet/ai-receptionist/internal/conversation"
	"github.com/MyatBhoneThet/ai-receptionist/internal/http/handlers"
	"github.com/MyatBhoneThet/ai-receptionist/internal/observability/metrics"
	"github.com/MyatBhoneThet/ai-receptionist/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting ai-receptionist API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	llm, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = llm.Close() }()

	var sessions conversation.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		sessions = conversation.NewRedisSessionStore(redisClient, nil)
		logger.Info("session state backed by redis", "addr", cfg.RedisAddr)
	} else {
		sessions = conversation.NewMemorySessionStore()
		logger.Info("session state held in process memory")
	}

	var calendarSync bookings.CalendarSync
	if cfg.GoogleCalendarID != "" && cfg.GoogleCredentialsJSON != "" {
		calendarSync, err = bookings.NewGoogleCalendarSync(ctx,
			[]byte(cfg.GoogleCredentialsJSON), cfg.GoogleCalendarID, logger)
		if err != nil {
			logger.Error("failed to create calendar sync", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("calendar credentials missing, sync disabled")
	}

	chatMetrics := metrics.NewChatMetrics(prometheus.DefaultRegisterer)

	repo := bookings.NewRepository(pool)
	reconciler := bookings.NewReconciler(repo, calendarSync, chatMetrics, logger)

	engine := conversation.NewEngine(sessions)
	transcript := conversation.NewTranscriptStore(pool)
	turns := conversation.NewTurnService(
		llm,
		engine,
		transcript,
		bookings.NewTurnReconciler(reconciler),
		chatMetrics,
		logger,
	).WithCompletionTimeout(cfg.CompletionTimeout)

	routerCfg := &router.Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(turns, logger),
		BookingsHandler:    handlers.NewBookingsHandler(reconciler, logger),
		HealthHandler:      handlers.NewHealthHandler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.EnableMetricsEndpoint {
		routerCfg.MetricsHandler = promhttp.Handler()
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
