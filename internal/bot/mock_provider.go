package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SentMessage records a single outbound message for assertions.
type SentMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Inline    *tgbotapi.InlineKeyboardMarkup
	Reply     *tgbotapi.ReplyKeyboardMarkup
}

// MockProvider provides an in-memory Provider implementation for testing
type MockProvider struct {
	mu     sync.Mutex
	nextID int

	Sent              []SentMessage
	Deleted           [][2]int64 // chatID, messageID pairs
	RemovedKeyboards  [][2]int64
	AnsweredCallbacks []string

	SendErr error
}

// NewMockProvider creates a new mock Telegram provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) record(chatID int64, text string, inline *tgbotapi.InlineKeyboardMarkup, reply *tgbotapi.ReplyKeyboardMarkup) int {
	m.nextID++
	m.Sent = append(m.Sent, SentMessage{
		ChatID:    chatID,
		MessageID: m.nextID,
		Text:      text,
		Inline:    inline,
		Reply:     reply,
	})
	return m.nextID
}

func (m *MockProvider) SendMessage(chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.record(chatID, text, nil, nil)
	return nil
}

func (m *MockProvider) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return 0, m.SendErr
	}
	return m.record(chatID, text, &keyboard, nil), nil
}

func (m *MockProvider) SendMessageWithReplyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.record(chatID, text, nil, &keyboard)
	return nil
}

func (m *MockProvider) RemoveInlineKeyboard(chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemovedKeyboards = append(m.RemovedKeyboards, [2]int64{chatID, int64(messageID)})
	return nil
}

func (m *MockProvider) DeleteMessage(chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, [2]int64{chatID, int64(messageID)})
	return nil
}

func (m *MockProvider) AnswerCallback(callbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnsweredCallbacks = append(m.AnsweredCallbacks, callbackID)
	return nil
}

func (m *MockProvider) SetWebhook(webhookURL string) error { return nil }

func (m *MockProvider) DeleteWebhook() error { return nil }

func (m *MockProvider) GetMe() (*tgbotapi.User, error) {
	return &tgbotapi.User{ID: 1, UserName: "habitbot_test"}, nil
}

// SentTo returns all messages recorded for a chat.
func (m *MockProvider) SentTo(chatID int64) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentMessage
	for _, s := range m.Sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// LastSent returns the most recent message sent to any chat, or nil.
func (m *MockProvider) LastSent() *SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	s := m.Sent[len(m.Sent)-1]
	return &s
}
