package handlers

import (
	"io"
	"net/http"

	"habitbot-api/internal/dialog"
	"habitbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles Telegram webhook requests
type WebhookHandler struct {
	dialogService dialog.Service
	logger        *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(dialogService dialog.Service, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		dialogService: dialogService,
		logger:        logger,
	}
}

// HandleTelegramWebhook processes incoming Telegram webhook updates.
// Telegram expects HTTP 200 for every delivery; failed updates are
// logged and dropped rather than redelivered forever.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if len(body) == 0 {
		h.logger.Warn("Received empty webhook body")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.dialogService.HandleWebhook(c.Request.Context(), body); err != nil {
		h.logger.Error("Failed to process webhook update", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
