package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/advisor"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/colleges"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/essay"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()
	ctx := context.Background()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database (identity, audit and the default record backend)
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateShared(database.DB); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout),
		pgLogHandler,
	)))

	// Retention for system_logs and user_activities
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, logging.Retention{
		SystemLogs: time.Duration(cfg.LogRetentionDays) * 24 * time.Hour,
		Activities: time.Duration(cfg.ActivityRetentionDays) * 24 * time.Hour,
	}, cleanupDone)

	// Record backend (selected at build time)
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("record backend unavailable", "backend", backendName, "error", err)
		os.Exit(1)
	}
	slog.Info("record backend ready", "backend", backendName)

	// AI providers
	chain, err := llm.FromConfig(ctx, cfg)
	if err != nil {
		slog.Error("ai provider setup failed", "error", err)
		os.Exit(1)
	}
	direct, err := llm.DirectFromConfig(ctx, cfg)
	if err != nil {
		slog.Error("ai provider setup failed", "error", err)
		os.Exit(1)
	}
	slog.Info("ai providers configured", "providers", chain.Configured())

	// Services
	tracker := activity.NewTracker(database.DB)
	table := colleges.Default()
	records := record.NewService(store, table, tracker)
	authService := services.NewAuthService(database.DB, cfg, services.LogMailer{}, tracker)
	essays := essay.NewController(records, chain, tracker, cfg.AITimeout)
	adv := advisor.New(chain, records, table, tracker)

	// Handlers
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Health:    handlers.NewHealthHandler(database.Ping, chain.Configured),
		Record:    handlers.NewRecordHandler(records),
		College:   handlers.NewCollegeHandler(records),
		Essay:     handlers.NewEssayHandler(essays, records),
		AI:        handlers.NewAIHandler(direct, adv),
		Activity:  handlers.NewActivityHandler(tracker),
		Export:    handlers.NewExportHandler(records, authService, tracker),
		Reference: handlers.NewReferenceHandler(table),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	tracker.Stop()
	pgLogHandler.Stop()
	closeStore()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
