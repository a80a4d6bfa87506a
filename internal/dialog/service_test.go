package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"habitbot-api/internal/bot"
	"habitbot-api/internal/common"
	"habitbot-api/internal/config"
	"habitbot-api/internal/events"
	"habitbot-api/internal/journal"
	"habitbot-api/internal/payment"
	"habitbot-api/internal/user"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const adminTelegramID = int64(999)

type fixture struct {
	svc       Service
	users     *user.MockRepository
	journal   *journal.MockRepository
	payments  *payment.MockRepository
	processor *payment.MockProvider
	paySvc    payment.Service
	transport *bot.MockProvider
	bus       *events.MockEventBus
	clock     *common.MockClock
}

func newFixture(t *testing.T) *fixture {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	f := &fixture{
		users:     user.NewMockRepository(),
		journal:   journal.NewMockRepository(),
		payments:  payment.NewMockRepository(),
		processor: payment.NewMockProvider(),
		transport: bot.NewMockProvider(),
		bus:       events.NewMockEventBus(),
		clock:     common.NewMockClock(now),
	}

	payCfg := config.PaymentsConfig{
		Price:            "299.00",
		Currency:         "RUB",
		ReturnURL:        "https://t.me/habitbot",
		SubscriptionDays: 30,
		TrialDays:        7,
	}
	logger := zaptest.NewLogger(t)

	f.paySvc = payment.NewService(payCfg, f.users, f.payments, f.processor,
		f.bus, logger.Named("payment"), f.clock)

	svc, err := NewService(config.BotConfig{AdminID: adminTelegramID}, payCfg,
		f.users, f.journal, f.paySvc, f.transport, f.bus,
		logger.Named("dialog"), f.clock)
	require.NoError(t, err)
	f.svc = svc

	return f
}

// newUser registers a user whose chat id equals the telegram id, the way
// private Telegram chats behave.
func (f *fixture) newUser(t *testing.T, telegramID int64, mutate func(*user.User)) *user.User {
	require.NoError(t, f.users.Create(&user.User{TelegramID: telegramID, CreatedAt: f.clock.Now()}))
	u, err := f.users.GetByTelegramID(telegramID)
	require.NoError(t, err)
	if mutate != nil {
		mutate(u)
		require.NoError(t, f.users.Update(u))
	}
	return u
}

func (f *fixture) getUser(t *testing.T, telegramID int64) *user.User {
	u, err := f.users.GetByTelegramID(telegramID)
	require.NoError(t, err)
	return u
}

func (f *fixture) sendText(t *testing.T, chatID int64, text string) {
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
	data, err := json.Marshal(upd)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleWebhook(context.Background(), data))
}

func (f *fixture) pressButton(t *testing.T, chatID int64, callbackData string) {
	upd := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
		Data: callbackData,
	}}
	data, err := json.Marshal(upd)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleWebhook(context.Background(), data))
}

func (f *fixture) lastText(t *testing.T) string {
	last := f.transport.LastSent()
	require.NotNil(t, last, "expected at least one outbound message")
	return last.Text
}

func subscribed(endsAt time.Time) func(*user.User) {
	return func(u *user.User) { u.SubscriptionEndsAt = &endsAt }
}

func TestOnboardingScenario(t *testing.T) {
	f := newFixture(t)
	chatID := int64(1001)

	f.sendText(t, chatID, "/start")
	assert.Equal(t, textAskName, f.lastText(t))

	f.sendText(t, chatID, "Alex")
	assert.Equal(t, textAskGender, f.lastText(t))

	f.pressButton(t, chatID, "gender_0")
	assert.Equal(t, textAskTime, f.lastText(t))

	f.sendText(t, chatID, "21:30")
	assert.Equal(t, textAskTimezone, f.lastText(t))

	f.pressButton(t, chatID, "tz_3")
	final := f.lastText(t)
	assert.Contains(t, final, "21:30")
	assert.Contains(t, final, "Москва")

	u := f.getUser(t, chatID)
	assert.Equal(t, "Alex", u.Name)
	require.NotNil(t, u.IsFemale)
	assert.False(t, *u.IsFemale)
	assert.Equal(t, "21:30", u.ReviewTime)
	require.NotNil(t, u.TimezoneOffset)
	assert.Equal(t, 3, *u.TimezoneOffset)
}

func TestOnboardingRejectsShortNameAndBadTime(t *testing.T) {
	f := newFixture(t)
	chatID := int64(1001)

	f.sendText(t, chatID, "/start")
	f.sendText(t, chatID, "A")
	assert.Equal(t, textNameTooShort, f.lastText(t))

	f.sendText(t, chatID, "Alex")
	f.pressButton(t, chatID, "gender_1")

	f.sendText(t, chatID, "9:30")
	assert.Equal(t, textBadTime, f.lastText(t))

	// State is unchanged, a valid time still works.
	f.sendText(t, chatID, "09:30")
	assert.Equal(t, textAskTimezone, f.lastText(t))
	assert.Equal(t, "09:30", f.getUser(t, chatID).ReviewTime)
}

func TestIntegrityYesIncrementsStreakOncePerDay(t *testing.T) {
	f := newFixture(t)
	chatID := int64(2002)
	offset := 3
	u := f.newUser(t, chatID, func(u *user.User) {
		u.Name = "Алекс"
		u.ReviewTime = "21:30"
		u.TimezoneOffset = &offset
		ends := f.clock.Now().AddDate(0, 0, 10)
		u.SubscriptionEndsAt = &ends
		u.CurrentStreak = 4
		u.MaxStreak = 4
	})

	require.NoError(t, f.bus.Publish(events.TopicReviewDue, events.ReviewDue{
		Event: events.NewEvent(), UserID: u.ID, ChatID: chatID, HasEvents: false,
	}))
	prompt := f.transport.LastSent()
	require.NotNil(t, prompt)
	assert.Equal(t, textIntegrity, prompt.Text)
	require.NotNil(t, prompt.Inline)

	f.pressButton(t, chatID, fmt.Sprintf("yes_%d", u.ID))
	reply := f.lastText(t)
	assert.Contains(t, reply, "Текущая серия дней без грызения: 5")
	assert.Contains(t, reply, "Максимальная серия: 5")

	updated := f.getUser(t, chatID)
	assert.Equal(t, 5, updated.CurrentStreak)
	assert.Equal(t, 5, updated.MaxStreak)
	assert.Equal(t, "2024-03-10", updated.LastCleanDay)

	// A second tap the same day reports unchanged numbers.
	f.pressButton(t, chatID, fmt.Sprintf("yes_%d", u.ID))
	again := f.lastText(t)
	assert.Contains(t, again, "Текущая серия дней без грызения: 5")

	unchanged := f.getUser(t, chatID)
	assert.Equal(t, 5, unchanged.CurrentStreak)
	assert.Equal(t, 5, unchanged.MaxStreak)
}

func TestEveningReviewWalkResetsStreak(t *testing.T) {
	f := newFixture(t)
	chatID := int64(3003)
	f.newUser(t, chatID, func(u *user.User) {
		u.Name = "Алекс"
		u.CurrentStreak = 3
		u.MaxStreak = 8
		ends := f.clock.Now().AddDate(0, 0, 10)
		u.SubscriptionEndsAt = &ends
	})

	f.sendText(t, chatID, ButtonRecordMoment)
	assert.Equal(t, textMomentPrompt, f.lastText(t))
	f.sendText(t, chatID, "грыз в метро")
	assert.Equal(t, textMomentSaved, f.lastText(t))

	f.sendText(t, chatID, ButtonRecordMoment)
	f.sendText(t, chatID, "опять на созвоне")

	f.sendText(t, chatID, "/review")
	assert.Contains(t, f.lastText(t), "грыз в метро")

	f.sendText(t, chatID, "стресс")
	assert.Contains(t, f.lastText(t), "опять на созвоне")

	f.sendText(t, chatID, "скука")
	assert.Contains(t, f.lastText(t), "Ты разобрал все моменты дня")

	updated := f.getUser(t, chatID)
	assert.Equal(t, 0, updated.CurrentStreak)
	assert.Equal(t, 8, updated.MaxStreak)

	first := f.journal.Get(1)
	second := f.journal.Get(2)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.True(t, first.Analyzed)
	assert.Equal(t, "стресс", first.Analysis)
	assert.True(t, second.Analyzed)
	assert.Equal(t, "скука", second.Analysis)
}

func TestReviewWithoutEvents(t *testing.T) {
	f := newFixture(t)
	chatID := int64(3004)
	f.newUser(t, chatID, subscribed(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)))

	f.sendText(t, chatID, "/review")
	assert.Equal(t, textNoEvents, f.lastText(t))
}

func TestNoAnswerLeadsIntoReview(t *testing.T) {
	f := newFixture(t)
	chatID := int64(4004)
	u := f.newUser(t, chatID, subscribed(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)))

	f.pressButton(t, chatID, fmt.Sprintf("no_%d", u.ID))
	assert.Equal(t, textNoReasonPrompt, f.lastText(t))

	f.sendText(t, chatID, "сорвался вечером")
	// The lapse is appended and the review opens on it immediately.
	assert.Contains(t, f.lastText(t), "сорвался вечером")

	f.sendText(t, chatID, "усталость")
	assert.Contains(t, f.lastText(t), "Ты разобрал все моменты дня")

	ev := f.journal.Get(1)
	require.NotNil(t, ev)
	assert.True(t, ev.Analyzed)
	assert.Equal(t, "усталость", ev.Analysis)
}

func TestPaywallBlocksUnsubscribedUser(t *testing.T) {
	f := newFixture(t)
	chatID := int64(5005)
	f.newUser(t, chatID, nil)

	f.sendText(t, chatID, ButtonRecordMoment)
	last := f.transport.LastSent()
	require.NotNil(t, last)
	assert.Equal(t, textPaywall, last.Text)
	require.NotNil(t, last.Inline)

	// No session opened: free text afterwards logs nothing.
	f.sendText(t, chatID, "грыз ногти")
	count, err := f.journal.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAdminBypassesPaywall(t *testing.T) {
	f := newFixture(t)
	f.newUser(t, adminTelegramID, nil)

	f.sendText(t, adminTelegramID, ButtonRecordMoment)
	assert.Equal(t, textMomentPrompt, f.lastText(t))
}

func TestTrialActivatesOnlyOnce(t *testing.T) {
	f := newFixture(t)
	chatID := int64(6006)
	f.newUser(t, chatID, nil)

	f.pressButton(t, chatID, "trial")
	assert.Contains(t, f.lastText(t), "2024-03-17")

	u := f.getUser(t, chatID)
	require.NotNil(t, u.SubscriptionEndsAt)
	firstEnds := *u.SubscriptionEndsAt
	assert.True(t, u.TrialUsed)

	f.pressButton(t, chatID, "trial")
	assert.Equal(t, textTrialUsed, f.lastText(t))
	again := f.getUser(t, chatID)
	assert.Equal(t, common.DateString(firstEnds), common.DateString(*again.SubscriptionEndsAt))
}

func TestPaymentFlowEndToEnd(t *testing.T) {
	f := newFixture(t)
	chatID := int64(7007)
	f.newUser(t, chatID, nil)

	f.pressButton(t, chatID, "pay")
	link := f.transport.LastSent()
	require.NotNil(t, link)
	assert.Equal(t, textPayLink, link.Text)
	require.NotNil(t, link.Inline)

	require.Len(t, f.processor.CreatedRequests, 1)
	p, err := f.payments.GetByProviderID("mock-payment-1")
	require.NoError(t, err)
	require.NotNil(t, p.LinkMessageID)
	assert.Equal(t, link.MessageID, *p.LinkMessageID)

	// Processor confirms; the webhook notification reconciles and the
	// dialog service retracts the link message and thanks the user.
	f.processor.SetStatus("mock-payment-1", payment.ProviderStatusSucceeded)
	require.NoError(t, f.paySvc.HandleNotification(context.Background(),
		payment.NotificationEventSucceeded, "mock-payment-1"))

	assert.Contains(t, f.lastText(t), "Оплата прошла успешно")
	require.Len(t, f.transport.Deleted, 1)
	assert.Equal(t, int64(link.MessageID), f.transport.Deleted[0][1])

	u := f.getUser(t, chatID)
	require.NotNil(t, u.SubscriptionEndsAt)
	assert.Equal(t, "2024-04-09", common.DateString(*u.SubscriptionEndsAt))
}

func TestCheckinFlow(t *testing.T) {
	f := newFixture(t)
	chatID := int64(8008)
	u := f.newUser(t, chatID, func(u *user.User) {
		u.Name = "Алекс"
		ends := f.clock.Now().AddDate(0, 0, 5)
		u.SubscriptionEndsAt = &ends
	})

	require.NoError(t, f.bus.Publish(events.TopicCheckinDue, events.CheckinDue{
		Event: events.NewEvent(), UserID: u.ID, ChatID: chatID, Name: u.Name,
	}))
	prompt := f.transport.LastSent()
	require.NotNil(t, prompt)
	assert.Contains(t, prompt.Text, "Алекс")
	require.NotNil(t, prompt.Inline)

	f.pressButton(t, chatID, fmt.Sprintf("bad_%d", u.ID))
	assert.Equal(t, textCheckinBad, f.lastText(t))

	f.sendText(t, chatID, "тяжёлый день")
	assert.Contains(t, f.lastText(t), "Вечером разберём")

	ev := f.journal.Get(1)
	require.NotNil(t, ev)
	assert.Equal(t, "тяжёлый день", ev.Text)
	assert.False(t, ev.Analyzed)
}

func TestAdminBroadcast(t *testing.T) {
	f := newFixture(t)
	f.newUser(t, adminTelegramID, nil)
	f.newUser(t, 1, nil)
	f.newUser(t, 2, nil)

	f.sendText(t, adminTelegramID, ButtonBroadcast)
	assert.Equal(t, textBroadcastPrompt, f.lastText(t))

	f.sendText(t, adminTelegramID, "Вышло обновление 🎉")

	delivered := 0
	for _, sent := range f.transport.Sent {
		if sent.Text == "Вышло обновление 🎉" {
			delivered++
		}
	}
	assert.Equal(t, 3, delivered)
	assert.True(t, strings.HasPrefix(f.lastText(t), "Рассылка отправлена: 3 из 3"))
}

func TestUnknownUserIsAskedToRestart(t *testing.T) {
	f := newFixture(t)

	f.sendText(t, 12345, "какой-то текст")
	assert.Equal(t, textRestart, f.lastText(t))
}
