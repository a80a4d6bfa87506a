package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Provider defines the contract for Telegram API operations
type Provider interface {
	// SendMessage sends a plain text message to the specified chat
	SendMessage(chatID int64, text string) error

	// SendMessageWithKeyboard sends a message with an inline keyboard and
	// returns the sent message ID so it can be edited or deleted later.
	SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error)

	// SendMessageWithReplyKeyboard sends a message with a reply keyboard
	SendMessageWithReplyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error

	// RemoveInlineKeyboard strips the inline keyboard from a previously sent message
	RemoveInlineKeyboard(chatID int64, messageID int) error

	// DeleteMessage removes a previously sent message
	DeleteMessage(chatID int64, messageID int) error

	// AnswerCallback acknowledges a callback query so the client stops the spinner
	AnswerCallback(callbackID string) error

	// SetWebhook configures the webhook URL for receiving updates
	SetWebhook(webhookURL string) error

	// DeleteWebhook removes the configured webhook
	DeleteWebhook() error

	// GetMe returns information about the bot
	GetMe() (*tgbotapi.User, error)
}
