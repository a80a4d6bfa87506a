package routes

import (
	"habitbot-api/api/handlers"
	"habitbot-api/api/middleware"
	"habitbot-api/internal/dialog"
	"habitbot-api/internal/payment"
	"habitbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, logger *logger.Logger,
	dialogService dialog.Service, paymentService payment.Service) {

	router.Use(middleware.RequestLogging(logger))
	router.Use(gin.Recovery())

	healthHandler := handlers.NewHealthHandler(db, logger)
	webhookHandler := handlers.NewWebhookHandler(dialogService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)
		v1.POST("/telegram/webhook", webhookHandler.HandleTelegramWebhook)
		v1.POST("/payments/webhook", paymentHandler.HandleNotification)
	}

	// Root health check
	router.GET("/health", healthHandler.Check)
}
