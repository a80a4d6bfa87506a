package bot

import (
	"fmt"

	"habitbot-api/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramProvider implements the Provider interface using the telegram-bot-api library
type telegramProvider struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
	config config.BotConfig
}

// NewTelegramProvider creates a new Provider instance
func NewTelegramProvider(config config.BotConfig, logger *zap.Logger) (Provider, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	// Validate bot by getting bot info
	_, err = api.GetMe()
	if err != nil {
		return nil, fmt.Errorf("failed to validate bot token: %w", err)
	}

	logger.Info("Telegram bot initialized successfully", zap.String("username", api.Self.UserName))

	return &telegramProvider{
		bot:    api,
		logger: logger,
		config: config,
	}, nil
}

// SendMessage sends a plain text message to the specified chat
func (p *telegramProvider) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := p.bot.Send(msg); err != nil {
		p.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendMessageWithKeyboard sends a message with an inline keyboard
func (p *telegramProvider) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard

	sent, err := p.bot.Send(msg)
	if err != nil {
		p.logger.Error("Failed to send message with keyboard",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to send message with keyboard: %w", err)
	}
	return sent.MessageID, nil
}

// SendMessageWithReplyKeyboard sends a message with a reply keyboard
func (p *telegramProvider) SendMessageWithReplyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard

	if _, err := p.bot.Send(msg); err != nil {
		p.logger.Error("Failed to send message with reply keyboard",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send message with reply keyboard: %w", err)
	}
	return nil
}

// RemoveInlineKeyboard strips the inline keyboard from a previously sent message
func (p *telegramProvider) RemoveInlineKeyboard(chatID int64, messageID int) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})

	if _, err := p.bot.Request(edit); err != nil {
		p.logger.Warn("Failed to remove inline keyboard",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to remove inline keyboard: %w", err)
	}
	return nil
}

// DeleteMessage removes a previously sent message
func (p *telegramProvider) DeleteMessage(chatID int64, messageID int) error {
	if _, err := p.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		p.logger.Warn("Failed to delete message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query so the client stops the spinner
func (p *telegramProvider) AnswerCallback(callbackID string) error {
	if _, err := p.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		p.logger.Warn("Failed to answer callback query",
			zap.String("callback_id", callbackID),
			zap.Error(err))
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

// SetWebhook configures the webhook URL for receiving updates
func (p *telegramProvider) SetWebhook(webhookURL string) error {
	p.logger.Info("Setting webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to create webhook config: %w", err)
	}

	if _, err := p.bot.Request(webhookConfig); err != nil {
		p.logger.Error("Failed to set webhook",
			zap.String("webhook_url", webhookURL),
			zap.Error(err))
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	p.logger.Info("Webhook set successfully", zap.String("webhook_url", webhookURL))
	return nil
}

// DeleteWebhook removes the configured webhook
func (p *telegramProvider) DeleteWebhook() error {
	if _, err := p.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		p.logger.Error("Failed to delete webhook", zap.Error(err))
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	p.logger.Info("Webhook deleted")
	return nil
}

// GetMe returns information about the bot
func (p *telegramProvider) GetMe() (*tgbotapi.User, error) {
	me, err := p.bot.GetMe()
	if err != nil {
		return nil, fmt.Errorf("failed to get bot information: %w", err)
	}
	return &me, nil
}
