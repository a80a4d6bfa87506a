package payment

import (
	"context"
	"testing"
	"time"

	"habitbot-api/internal/common"
	"habitbot-api/internal/config"
	"habitbot-api/internal/events"
	"habitbot-api/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T, now time.Time) (Service, *user.MockRepository, *MockRepository, *MockProvider, *events.MockEventBus) {
	users := user.NewMockRepository()
	payments := NewMockRepository()
	provider := NewMockProvider()
	bus := events.NewMockEventBus()

	cfg := config.PaymentsConfig{
		Price:            "299.00",
		Currency:         "RUB",
		ReturnURL:        "https://t.me/habitbot",
		SubscriptionDays: 30,
		TrialDays:        7,
	}

	svc := NewService(cfg, users, payments, provider, bus,
		zaptest.NewLogger(t).Named("payment"), common.NewMockClock(now))

	return svc, users, payments, provider, bus
}

func newTestUser(t *testing.T, users *user.MockRepository) *user.User {
	u := &user.User{TelegramID: 100500}
	require.NoError(t, users.Create(u))
	stored, err := users.GetByTelegramID(100500)
	require.NoError(t, err)
	return stored
}

func TestCreateCheckout(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, users, payments, provider, _ := newTestService(t, now)
	u := newTestUser(t, users)

	checkout, err := svc.CreateCheckout(context.Background(), u, 100500)
	require.NoError(t, err)
	assert.NotEmpty(t, checkout.ProviderID)
	assert.NotEmpty(t, checkout.ConfirmationURL)

	stored, err := payments.GetByProviderID(checkout.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, u.ID, stored.UserID)
	assert.Equal(t, "299.00", stored.Amount)

	require.Len(t, provider.CreatedRequests, 1)
	assert.Equal(t, "RUB", provider.CreatedRequests[0].Currency)
}

func TestHandleNotification_ExtendsSubscriptionOnce(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, users, _, provider, bus := newTestService(t, now)
	u := newTestUser(t, users)

	checkout, err := svc.CreateCheckout(context.Background(), u, 100500)
	require.NoError(t, err)
	require.NoError(t, svc.RememberLinkMessage(checkout.ProviderID, 42))

	provider.SetStatus(checkout.ProviderID, ProviderStatusSucceeded)

	require.NoError(t, svc.HandleNotification(context.Background(),
		NotificationEventSucceeded, checkout.ProviderID))

	updated, err := users.GetByID(u.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.SubscriptionEndsAt)
	wantEnds := now.AddDate(0, 0, 30)
	assert.Equal(t, common.DateString(wantEnds), common.DateString(*updated.SubscriptionEndsAt))

	published := bus.Published(events.TopicPaymentSucceeded)
	require.Len(t, published, 1)
	succeeded := published[0].(events.PaymentSucceeded)
	assert.Equal(t, u.ID, succeeded.UserID)
	assert.Equal(t, 42, succeeded.LinkMessageID)

	// Duplicate delivery of the same notification is a no-op.
	require.NoError(t, svc.HandleNotification(context.Background(),
		NotificationEventSucceeded, checkout.ProviderID))

	again, err := users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, common.DateString(wantEnds), common.DateString(*again.SubscriptionEndsAt))
	assert.Len(t, bus.Published(events.TopicPaymentSucceeded), 1)
}

func TestHandleNotification_StacksOnUnexpiredWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, users, _, provider, _ := newTestService(t, now)
	u := newTestUser(t, users)

	existing := now.AddDate(0, 0, 10)
	u.SubscriptionEndsAt = &existing
	require.NoError(t, users.Update(u))

	checkout, err := svc.CreateCheckout(context.Background(), u, 100500)
	require.NoError(t, err)
	provider.SetStatus(checkout.ProviderID, ProviderStatusSucceeded)

	require.NoError(t, svc.HandleNotification(context.Background(),
		NotificationEventSucceeded, checkout.ProviderID))

	updated, err := users.GetByID(u.ID)
	require.NoError(t, err)
	wantEnds := existing.AddDate(0, 0, 30)
	assert.Equal(t, common.DateString(wantEnds), common.DateString(*updated.SubscriptionEndsAt))
}

func TestHandleNotification_StatusMismatchIsNoOp(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, users, payments, provider, bus := newTestService(t, now)
	u := newTestUser(t, users)

	checkout, err := svc.CreateCheckout(context.Background(), u, 100500)
	require.NoError(t, err)

	// Notification claims success but the processor still says pending.
	provider.SetStatus(checkout.ProviderID, ProviderStatusPending)

	require.NoError(t, svc.HandleNotification(context.Background(),
		NotificationEventSucceeded, checkout.ProviderID))

	stored, err := payments.GetByProviderID(checkout.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)

	updated, err := users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.SubscriptionEndsAt)
	assert.Empty(t, bus.Published(events.TopicPaymentSucceeded))
}

func TestHandleNotification_IgnoresUnknownPaymentAndEvent(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _, _, _, bus := newTestService(t, now)

	assert.NoError(t, svc.HandleNotification(context.Background(),
		NotificationEventSucceeded, "no-such-payment"))
	assert.NoError(t, svc.HandleNotification(context.Background(),
		"payment.canceled", "whatever"))
	assert.Empty(t, bus.Published(events.TopicPaymentSucceeded))
}
