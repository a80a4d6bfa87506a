package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"habitbot-api/internal/bot"
	"habitbot-api/internal/common"
	"habitbot-api/internal/config"
	"habitbot-api/internal/events"
	"habitbot-api/internal/journal"
	"habitbot-api/internal/payment"
	"habitbot-api/internal/user"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Service is the dialog controller: it maps an incoming update plus the
// chat's current session to store mutations, a new session and replies.
type Service interface {
	HandleWebhook(ctx context.Context, webhookData []byte) error
}

type dialogService struct {
	botConfig config.BotConfig
	payConfig config.PaymentsConfig
	users     user.Repository
	journal   journal.Repository
	payments  payment.Service
	provider  bot.Provider
	eventBus  events.EventBus
	sessions  *SessionStore
	logger    *zap.Logger
	clock     common.Clock
}

// NewService creates a new dialog service and subscribes it to the
// scheduler's and payment reconciliation's outbound events.
func NewService(botCfg config.BotConfig, payCfg config.PaymentsConfig,
	users user.Repository, journalRepo journal.Repository, payments payment.Service,
	provider bot.Provider, eventBus events.EventBus,
	logger *zap.Logger, clock common.Clock) (Service, error) {

	s := &dialogService{
		botConfig: botCfg,
		payConfig: payCfg,
		users:     users,
		journal:   journalRepo,
		payments:  payments,
		provider:  provider,
		eventBus:  eventBus,
		sessions:  NewSessionStore(),
		logger:    logger,
		clock:     clock,
	}

	if err := eventBus.Subscribe(events.TopicCheckinDue, s.handleCheckinDue); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", events.TopicCheckinDue, err)
	}
	if err := eventBus.Subscribe(events.TopicReviewDue, s.handleReviewDue); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", events.TopicReviewDue, err)
	}
	if err := eventBus.Subscribe(events.TopicPaymentSucceeded, s.handlePaymentSucceeded); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", events.TopicPaymentSucceeded, err)
	}

	return s, nil
}

func (s *dialogService) HandleWebhook(ctx context.Context, webhookData []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(webhookData, &update); err != nil {
		return fmt.Errorf("failed to parse webhook update: %w", err)
	}

	switch {
	case update.CallbackQuery != nil:
		return s.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		return s.handleMessage(update.Message)
	default:
		s.logger.Debug("Ignoring update without text or callback",
			zap.Int("update_id", update.UpdateID))
		return nil
	}
}

func (s *dialogService) isAdmin(telegramID int64) bool {
	return s.botConfig.AdminID != 0 && telegramID == s.botConfig.AdminID
}

// allowed evaluates the subscription gate for gated actions.
func (s *dialogService) allowed(u *user.User) bool {
	if s.isAdmin(u.TelegramID) {
		return true
	}
	return u.SubscriptionActive(s.userNow(u))
}

func (s *dialogService) sendPaywall(chatID int64, u *user.User) {
	if _, err := s.provider.SendMessageWithKeyboard(chatID, textPaywall, paywallKeyboard(!u.TrialUsed)); err != nil {
		s.logger.Warn("Failed to send paywall", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (s *dialogService) handleMessage(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	telegramID := msg.From.ID
	text := msg.Text

	if text == "/start" {
		return s.onStart(chatID, telegramID)
	}

	u, err := s.users.GetByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.sessions.Clear(chatID)
			return s.provider.SendMessage(chatID, textRestart)
		}
		return err
	}

	switch text {
	case "/pogryz", ButtonRecordMoment:
		if !s.allowed(u) {
			s.sendPaywall(chatID, u)
			return nil
		}
		s.sessions.Set(chatID, Session{Tag: StateAwaitingMomentText})
		return s.provider.SendMessage(chatID, textMomentPrompt)

	case "/review":
		if !s.allowed(u) {
			s.sendPaywall(chatID, u)
			return nil
		}
		return s.startReview(chatID, u)

	case ButtonSettings:
		return s.provider.SendMessageWithReplyKeyboard(chatID, textSettings, settingsKeyboard(s.isAdmin(telegramID)))

	case ButtonBack:
		s.sessions.Clear(chatID)
		return s.provider.SendMessageWithReplyKeyboard(chatID, textMainMenu, mainKeyboard())

	case ButtonChangeTime:
		s.sessions.Set(chatID, Session{Tag: StateAwaitingTimeText})
		return s.provider.SendMessage(chatID, textAskNewTime)

	case ButtonChangeTimezone:
		s.sessions.Set(chatID, Session{Tag: StateAwaitingTimezone})
		_, err := s.provider.SendMessageWithKeyboard(chatID, textAskTimezone, timezoneKeyboard())
		return err

	case ButtonStats:
		if !s.isAdmin(telegramID) {
			break
		}
		return s.sendStats(chatID)

	case ButtonBroadcast:
		if !s.isAdmin(telegramID) {
			break
		}
		s.sessions.Set(chatID, Session{Tag: StateAwaitingBroadcastText})
		return s.provider.SendMessage(chatID, textBroadcastPrompt)
	}

	return s.handleSessionText(chatID, u, text)
}

func (s *dialogService) onStart(chatID, telegramID int64) error {
	if err := s.users.Create(&user.User{TelegramID: telegramID, CreatedAt: s.clock.Now()}); err != nil {
		return err
	}
	u, err := s.users.GetByTelegramID(telegramID)
	if err != nil {
		return err
	}

	if !u.HasName() {
		if err := s.provider.SendMessageWithReplyKeyboard(chatID, textWelcome, mainKeyboard()); err != nil {
			return err
		}
		s.sessions.Set(chatID, Session{Tag: StateAwaitingName})
		return s.provider.SendMessage(chatID, textAskName)
	}

	if u.ReviewTime == "" {
		if err := s.provider.SendMessageWithReplyKeyboard(chatID, textWelcome, mainKeyboard()); err != nil {
			return err
		}
		s.sessions.Set(chatID, Session{Tag: StateAwaitingTimeText})
		return s.provider.SendMessage(chatID, textAskTime)
	}

	return s.provider.SendMessageWithReplyKeyboard(chatID,
		textWelcome+textAlreadyConfigured(u.ReviewTime), mainKeyboard())
}

func (s *dialogService) handleSessionText(chatID int64, u *user.User, text string) error {
	session := s.sessions.Get(chatID)

	switch session.Tag {
	case StateAwaitingName:
		return s.handleName(chatID, u, text)
	case StateAwaitingTimeText:
		return s.handleTimeText(chatID, u, text)
	case StateAwaitingMomentText:
		return s.handleMomentText(chatID, u, text)
	case StateAwaitingReviewText:
		return s.handleReviewText(chatID, u, session, text)
	case StateAwaitingCheckinNote:
		return s.handleCheckinNote(chatID, u, session, text)
	case StateAwaitingNoReason:
		return s.handleNoReason(chatID, u, session, text)
	case StateAwaitingBroadcastText:
		return s.handleBroadcastText(chatID, u, text)
	}

	// Free text with no pending state is an unrecognized command.
	s.logger.Debug("Ignoring free text without pending state", zap.Int64("chat_id", chatID))
	return nil
}

func (s *dialogService) handleName(chatID int64, u *user.User, text string) error {
	if err := u.SetName(text); err != nil {
		return s.provider.SendMessage(chatID, textNameTooShort)
	}
	if err := s.users.Update(u); err != nil {
		return err
	}

	if u.IsFemale == nil {
		s.sessions.Set(chatID, Session{Tag: StateAwaitingGender})
		_, err := s.provider.SendMessageWithKeyboard(chatID, textAskGender, genderKeyboard())
		return err
	}

	s.sessions.Set(chatID, Session{Tag: StateAwaitingTimeText})
	return s.provider.SendMessage(chatID, textAskTime)
}

func (s *dialogService) handleTimeText(chatID int64, u *user.User, text string) error {
	if !timePattern.MatchString(text) {
		return s.provider.SendMessage(chatID, textBadTime)
	}

	u.ReviewTime = text
	if err := s.users.Update(u); err != nil {
		return err
	}

	if err := s.provider.SendMessage(chatID, textTimeSaved(text)); err != nil {
		return err
	}
	s.sessions.Set(chatID, Session{Tag: StateAwaitingTimezone})
	_, err := s.provider.SendMessageWithKeyboard(chatID, textAskTimezone, timezoneKeyboard())
	return err
}

func (s *dialogService) handleMomentText(chatID int64, u *user.User, text string) error {
	event := &journal.Event{UserID: u.ID, Text: text, CreatedAt: s.clock.Now()}
	if err := s.journal.Append(event); err != nil {
		return err
	}
	s.sessions.Clear(chatID)
	return s.provider.SendMessageWithReplyKeyboard(chatID, textMomentSaved, mainKeyboard())
}

// startReview loads today's unresolved events on the user's local
// calendar and opens the review walk, or reports a clean day.
func (s *dialogService) startReview(chatID int64, u *user.User) error {
	todays, err := s.todayEvents(u)
	if err != nil {
		return err
	}
	if len(todays) == 0 {
		return s.provider.SendMessage(chatID, textNoEvents)
	}

	s.sessions.Set(chatID, Session{Tag: StateAwaitingReviewText, Events: todays, Cursor: 0})
	return s.provider.SendMessage(chatID, textReviewFirst(todays[0].Text))
}

func (s *dialogService) handleReviewText(chatID int64, u *user.User, session Session, text string) error {
	current := session.Events[session.Cursor]
	if err := s.journal.SaveAnalysis(current.ID, text); err != nil {
		if !errors.Is(err, journal.ErrEventNotFound) {
			return err
		}
		// Already analyzed elsewhere; keep walking.
		s.logger.Warn("Review event already analyzed", zap.Int64("event_id", current.ID))
	}

	session.Cursor++
	if session.Cursor < len(session.Events) {
		s.sessions.Set(chatID, session)
		return s.provider.SendMessage(chatID, textReviewNext(session.Events[session.Cursor].Text))
	}

	// Completing the review forfeits today's clean-streak credit.
	u.ResetStreak()
	if err := s.users.Update(u); err != nil {
		return err
	}
	s.sessions.Clear(chatID)
	return s.provider.SendMessageWithReplyKeyboard(chatID, textReviewDone(u), mainKeyboard())
}

func (s *dialogService) handleCheckinNote(chatID int64, u *user.User, session Session, text string) error {
	if session.StashedUserID != u.ID {
		s.sessions.Clear(chatID)
		return s.provider.SendMessage(chatID, textRestart)
	}

	event := &journal.Event{UserID: u.ID, Text: text, CreatedAt: s.clock.Now()}
	if err := s.journal.Append(event); err != nil {
		return err
	}
	s.sessions.Clear(chatID)
	return s.provider.SendMessage(chatID, textCheckinNoteSaved(u))
}

func (s *dialogService) handleNoReason(chatID int64, u *user.User, session Session, text string) error {
	if session.StashedUserID != u.ID {
		s.sessions.Clear(chatID)
		return s.provider.SendMessage(chatID, textRestart)
	}

	event := &journal.Event{UserID: u.ID, Text: text, CreatedAt: s.clock.Now()}
	if err := s.journal.Append(event); err != nil {
		return err
	}
	s.sessions.Clear(chatID)

	// The lapse goes straight into the evening review, alongside any
	// other unresolved events from today.
	return s.startReview(chatID, u)
}

func (s *dialogService) handleBroadcastText(chatID int64, u *user.User, text string) error {
	s.sessions.Clear(chatID)
	if !s.isAdmin(u.TelegramID) {
		return nil
	}

	all, err := s.users.ListAll()
	if err != nil {
		return err
	}

	sent := 0
	for _, recipient := range all {
		if err := s.provider.SendMessage(recipient.TelegramID, text); err != nil {
			s.logger.Warn("Broadcast delivery failed",
				zap.Int64("telegram_id", recipient.TelegramID), zap.Error(err))
			continue
		}
		sent++
	}

	return s.provider.SendMessage(chatID, textBroadcastDone(sent, len(all)))
}

func (s *dialogService) sendStats(chatID int64) error {
	userCount, err := s.users.Count()
	if err != nil {
		return err
	}
	eventCount, err := s.journal.Count()
	if err != nil {
		return err
	}
	return s.provider.SendMessage(chatID, textStats(userCount, eventCount))
}

func (s *dialogService) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	telegramID := cb.From.ID
	action := decodeCallback(cb.Data)

	if err := s.provider.AnswerCallback(cb.ID); err != nil {
		s.logger.Debug("Failed to answer callback", zap.Error(err))
	}
	// Retract the buttons so the prompt cannot be replayed.
	if action.Kind != ActionUnknown {
		if err := s.provider.RemoveInlineKeyboard(chatID, cb.Message.MessageID); err != nil {
			s.logger.Debug("Failed to retract keyboard", zap.Error(err))
		}
	}

	u, err := s.users.GetByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.sessions.Clear(chatID)
			return s.provider.SendMessage(chatID, textRestart)
		}
		return err
	}

	switch action.Kind {
	case ActionYes:
		return s.handleYes(chatID, u)
	case ActionNo:
		if !s.allowed(u) {
			s.sendPaywall(chatID, u)
			return nil
		}
		s.sessions.Set(chatID, Session{Tag: StateAwaitingNoReason, StashedUserID: action.Arg})
		return s.provider.SendMessage(chatID, textNoReasonPrompt)
	case ActionCheckinOK:
		return s.provider.SendMessage(chatID, textCheckinOK)
	case ActionCheckinBad:
		if !s.allowed(u) {
			s.sendPaywall(chatID, u)
			return nil
		}
		s.sessions.Set(chatID, Session{Tag: StateAwaitingCheckinNote, StashedUserID: action.Arg})
		return s.provider.SendMessage(chatID, textCheckinBad)
	case ActionTimezone:
		return s.handleTimezone(chatID, u, int(action.Arg))
	case ActionGender:
		return s.handleGender(chatID, u, action.Arg == 1)
	case ActionTrial:
		return s.handleTrial(chatID, u)
	case ActionPay:
		return s.handlePay(ctx, chatID, u)
	}

	s.logger.Debug("Ignoring unknown callback", zap.String("data", cb.Data))
	return nil
}

func (s *dialogService) handleYes(chatID int64, u *user.User) error {
	if !s.allowed(u) {
		s.sendPaywall(chatID, u)
		return nil
	}

	if !u.RecordCleanDay(s.userNow(u)) {
		// Stale prompt or a second tap today: stats stay unchanged.
		return s.provider.SendMessage(chatID, textStreakAlreadyCounted(u))
	}
	if err := s.users.Update(u); err != nil {
		return err
	}
	return s.provider.SendMessage(chatID, textStreak(u))
}

func (s *dialogService) handleTimezone(chatID int64, u *user.User, offset int) error {
	city := timezoneCity(offset)
	if city == "" {
		s.logger.Warn("Unknown timezone offset", zap.Int("offset", offset))
		return nil
	}

	u.TimezoneOffset = &offset
	if err := s.users.Update(u); err != nil {
		return err
	}
	s.sessions.Clear(chatID)

	if u.ReviewTime != "" {
		return s.provider.SendMessageWithReplyKeyboard(chatID,
			textSetupDone(u.ReviewTime, city), mainKeyboard())
	}
	return s.provider.SendMessageWithReplyKeyboard(chatID, textTimezoneSaved(city), mainKeyboard())
}

func (s *dialogService) handleGender(chatID int64, u *user.User, isFemale bool) error {
	u.IsFemale = &isFemale
	if err := s.users.Update(u); err != nil {
		return err
	}

	s.sessions.Set(chatID, Session{Tag: StateAwaitingTimeText})
	return s.provider.SendMessage(chatID, textAskTime)
}

func (s *dialogService) handleTrial(chatID int64, u *user.User) error {
	if err := u.StartTrial(s.userNow(u), s.payConfig.TrialDays); err != nil {
		if errors.Is(err, user.ErrTrialAlreadyUsed) {
			return s.provider.SendMessage(chatID, textTrialUsed)
		}
		return err
	}
	if err := s.users.Update(u); err != nil {
		return err
	}
	return s.provider.SendMessage(chatID, textTrialStarted(common.DateString(*u.SubscriptionEndsAt)))
}

func (s *dialogService) handlePay(ctx context.Context, chatID int64, u *user.User) error {
	checkout, err := s.payments.CreateCheckout(ctx, u, chatID)
	if err != nil {
		s.logger.Error("Failed to create checkout",
			zap.Int64("user_id", u.ID), zap.Error(err))
		return s.provider.SendMessage(chatID, textPaymentFailed)
	}

	messageID, err := s.provider.SendMessageWithKeyboard(chatID, textPayLink,
		payLinkKeyboard(checkout.ConfirmationURL))
	if err != nil {
		return err
	}

	if err := s.payments.RememberLinkMessage(checkout.ProviderID, messageID); err != nil {
		s.logger.Warn("Failed to remember checkout link message",
			zap.String("provider_id", checkout.ProviderID), zap.Error(err))
	}
	return nil
}

// todayEvents lists the user's unanalyzed events created inside the
// user's current local calendar day.
func (s *dialogService) todayEvents(u *user.User) ([]*journal.Event, error) {
	offset := 0
	if u.TimezoneOffset != nil {
		offset = *u.TimezoneOffset
	}
	from, to := common.LocalDayWindow(s.clock.Now(), offset)
	return s.journal.ListUnanalyzed(u.ID, from, to)
}

// userNow is the current instant shifted to the user's local clock,
// used wherever "today" means the user's calendar day. Users without a
// timezone fall back to UTC for date arithmetic; they never receive
// scheduled prompts anyway.
func (s *dialogService) userNow(u *user.User) time.Time {
	offset := 0
	if u.TimezoneOffset != nil {
		offset = *u.TimezoneOffset
	}
	return common.LocalNow(s.clock.Now(), offset)
}

// --- event-bus handlers ---

func (s *dialogService) handleCheckinDue(event events.CheckinDue) {
	u, err := s.users.GetByID(event.UserID)
	if err != nil {
		s.logger.Warn("Check-in for missing user",
			zap.Int64("user_id", event.UserID), zap.Error(err))
		return
	}

	if _, err := s.provider.SendMessageWithKeyboard(event.ChatID, textCheckin(u),
		checkinKeyboard(event.UserID)); err != nil {
		s.logger.Warn("Failed to send check-in prompt",
			zap.Int64("chat_id", event.ChatID), zap.Error(err))
	}
}

func (s *dialogService) handleReviewDue(event events.ReviewDue) {
	if event.HasEvents {
		if err := s.provider.SendMessage(event.ChatID, textReviewNudge); err != nil {
			s.logger.Warn("Failed to send review nudge",
				zap.Int64("chat_id", event.ChatID), zap.Error(err))
		}
		return
	}

	if _, err := s.provider.SendMessageWithKeyboard(event.ChatID, textIntegrity,
		yesNoKeyboard(event.UserID)); err != nil {
		s.logger.Warn("Failed to send integrity prompt",
			zap.Int64("chat_id", event.ChatID), zap.Error(err))
	}
}

func (s *dialogService) handlePaymentSucceeded(event events.PaymentSucceeded) {
	if event.LinkMessageID != 0 {
		if err := s.provider.DeleteMessage(event.LinkChatID, event.LinkMessageID); err != nil {
			s.logger.Debug("Failed to delete checkout link message", zap.Error(err))
		}
	}

	if err := s.provider.SendMessage(event.ChatID,
		textPaymentThanks(common.DateString(event.ExpiresAt))); err != nil {
		s.logger.Warn("Failed to send payment confirmation",
			zap.Int64("chat_id", event.ChatID), zap.Error(err))
	}
}
