package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitbot-api/api/routes"
	"habitbot-api/internal/bot"
	"habitbot-api/internal/common"
	"habitbot-api/internal/config"
	"habitbot-api/internal/database"
	"habitbot-api/internal/dialog"
	"habitbot-api/internal/events"
	"habitbot-api/internal/journal"
	"habitbot-api/internal/payment"
	"habitbot-api/internal/scheduler"
	"habitbot-api/internal/user"
	"habitbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger
	logger := logger.New()
	defer logger.Sync()

	// Get the underlying zap logger for services
	zapLogger := logger.SugaredLogger.Desugar()

	// Load configuration; missing credentials fail fast here
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize event bus
	eventBus := events.NewEventBus(zapLogger)

	clock := common.NewRealClock()

	// Repositories
	userRepository := user.NewGormRepository(db, zapLogger)
	journalRepository := journal.NewGormRepository(db, zapLogger)
	paymentRepository := payment.NewGormRepository(db, zapLogger)

	// Telegram transport
	botProvider, err := bot.NewTelegramProvider(cfg.Bot, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize telegram provider", "error", err)
	}
	if cfg.Bot.WebhookURL != "" {
		if err := botProvider.SetWebhook(cfg.Bot.WebhookURL); err != nil {
			logger.Warn("Failed to set webhook", "error", err)
		}
	}

	// Services
	paymentProvider, err := payment.NewYooKassaProvider(cfg.Payments, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize payment provider", "error", err)
	}
	paymentService := payment.NewService(cfg.Payments, userRepository,
		paymentRepository, paymentProvider, eventBus, zapLogger, clock)

	dialogService, err := dialog.NewService(cfg.Bot, cfg.Payments,
		userRepository, journalRepository, paymentService, botProvider,
		eventBus, zapLogger, clock)
	if err != nil {
		logger.Fatal("Failed to initialize dialog service", "error", err)
	}

	// Scheduler
	var reminderScheduler scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		reminderScheduler, err = scheduler.NewScheduler(cfg.Scheduler, cfg.Bot,
			userRepository, journalRepository, eventBus, zapLogger, clock)
		if err != nil {
			logger.Fatal("Failed to create scheduler", "error", err)
		}

		if err := reminderScheduler.Start(context.Background()); err != nil {
			logger.Fatal("Scheduler failed to start", "error", err)
		}

		logger.Info("Reminder scheduler started",
			"poll_interval", cfg.Scheduler.PollInterval,
			"checkin_hour", cfg.Scheduler.CheckinHour)
	} else {
		logger.Info("Reminder scheduler disabled")
	}

	// Setup Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, db, logger, dialogService, paymentService)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop scheduler first so no new prompts are published
	if reminderScheduler != nil && reminderScheduler.IsRunning() {
		if err := reminderScheduler.Stop(); err != nil {
			logger.Error("Failed to stop scheduler gracefully", "error", err)
		}
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
