package handlers

import (
	"net/http"

	"habitbot-api/internal/payment"
	"habitbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// paymentNotification is the processor's webhook payload.
type paymentNotification struct {
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

// PaymentHandler handles payment processor webhook notifications
type PaymentHandler struct {
	paymentService payment.Service
	logger         *logger.Logger
}

// NewPaymentHandler creates a new PaymentHandler instance
func NewPaymentHandler(paymentService payment.Service, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// HandleNotification processes a payment webhook. The response is always
// HTTP 200: reconciliation is idempotent, so acknowledging every delivery
// avoids retry storms without losing safety.
func (h *PaymentHandler) HandleNotification(c *gin.Context) {
	var notification paymentNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		h.logger.Warn("Malformed payment notification", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.paymentService.HandleNotification(c.Request.Context(),
		notification.Event, notification.Object.ID); err != nil {
		h.logger.Error("Failed to reconcile payment notification",
			"payment_id", notification.Object.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
