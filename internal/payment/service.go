package payment

import (
	"context"
	"errors"
	"fmt"

	"habitbot-api/internal/common"
	"habitbot-api/internal/config"
	"habitbot-api/internal/events"
	"habitbot-api/internal/user"

	"go.uber.org/zap"
)

// NotificationEventSucceeded is the webhook event name the processor sends
// when a payment completes.
const NotificationEventSucceeded = "payment.succeeded"

// Service owns checkout creation and asynchronous payment reconciliation.
type Service interface {
	// CreateCheckout opens a checkout for the user and stores the pending
	// Payment keyed by the processor's identifier.
	CreateCheckout(ctx context.Context, u *user.User, chatID int64) (*Checkout, error)

	// RememberLinkMessage records the chat message that displayed the
	// checkout link so reconciliation can retract it later.
	RememberLinkMessage(providerID string, messageID int) error

	// HandleNotification reconciles a processor webhook notification.
	// It is idempotent: duplicate deliveries extend the subscription once.
	HandleNotification(ctx context.Context, eventName, providerID string) error
}

type service struct {
	config   config.PaymentsConfig
	users    user.Repository
	payments Repository
	provider Provider
	eventBus events.EventBus
	logger   *zap.Logger
	clock    common.Clock
}

// NewService creates a new payment service
func NewService(cfg config.PaymentsConfig, users user.Repository, payments Repository,
	provider Provider, eventBus events.EventBus, logger *zap.Logger, clock common.Clock) Service {
	return &service{
		config:   cfg,
		users:    users,
		payments: payments,
		provider: provider,
		eventBus: eventBus,
		logger:   logger,
		clock:    clock,
	}
}

func (s *service) CreateCheckout(ctx context.Context, u *user.User, chatID int64) (*Checkout, error) {
	checkout, err := s.provider.CreatePayment(ctx, CreatePaymentRequest{
		Amount:      s.config.Price,
		Currency:    s.config.Currency,
		Description: fmt.Sprintf("Подписка на %d дней", s.config.SubscriptionDays),
		ReturnURL:   s.config.ReturnURL,
		UserID:      u.ID,
	})
	if err != nil {
		return nil, err
	}

	p := &Payment{
		UserID:     u.ID,
		ChatID:     chatID,
		ProviderID: checkout.ProviderID,
		Amount:     s.config.Price,
		Currency:   s.config.Currency,
		Status:     StatusPending,
	}
	if err := s.payments.Create(p); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout created",
		zap.Int64("user_id", u.ID),
		zap.String("provider_id", checkout.ProviderID))

	return checkout, nil
}

func (s *service) RememberLinkMessage(providerID string, messageID int) error {
	return s.payments.SetLinkMessage(providerID, messageID)
}

func (s *service) HandleNotification(ctx context.Context, eventName, providerID string) error {
	logger := s.logger.With(zap.String("provider_id", providerID))

	if eventName != NotificationEventSucceeded {
		logger.Debug("Ignoring notification", zap.String("event", eventName))
		return nil
	}

	p, err := s.payments.GetByProviderID(providerID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			// Unknown payment id: possibly spoofed, nothing to reconcile.
			logger.Warn("Notification for unknown payment")
			return nil
		}
		return err
	}

	if p.Status == StatusSucceeded {
		logger.Debug("Payment already reconciled")
		return nil
	}

	// Never trust the notification payload alone; the processor's own
	// answer decides whether the subscription is extended.
	status, err := s.provider.GetPaymentStatus(ctx, providerID)
	if err != nil {
		return err
	}
	if status != ProviderStatusSucceeded {
		logger.Warn("Notification/processor status mismatch, ignoring",
			zap.String("processor_status", status))
		return nil
	}

	if err := s.payments.MarkSucceeded(providerID); err != nil {
		if errors.Is(err, ErrAlreadySucceeded) {
			return nil
		}
		return err
	}

	u, err := s.users.GetByID(p.UserID)
	if err != nil {
		return err
	}

	u.ExtendSubscription(s.clock.Now(), s.config.SubscriptionDays)
	if err := s.users.Update(u); err != nil {
		return err
	}

	logger.Info("Payment reconciled, subscription extended",
		zap.Int64("user_id", u.ID),
		zap.Timep("ends_at", u.SubscriptionEndsAt))

	succeeded := events.PaymentSucceeded{
		Event:      events.NewEvent(),
		UserID:     u.ID,
		ChatID:     p.ChatID,
		PaymentID:  providerID,
		ExpiresAt:  *u.SubscriptionEndsAt,
		LinkChatID: p.ChatID,
	}
	if p.LinkMessageID != nil {
		succeeded.LinkMessageID = *p.LinkMessageID
	}

	if err := s.eventBus.Publish(events.TopicPaymentSucceeded, succeeded); err != nil {
		// Reconciliation already committed; notification is best effort.
		logger.Error("Failed to publish payment.succeeded", zap.Error(err))
	}

	return nil
}
