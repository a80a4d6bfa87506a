package events

import (
	"time"

	"github.com/google/uuid"
)

// Event carries the common fields every published event has
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// CheckinDue fires when a user's local clock hits the midday check-in minute.
// The scheduler has already recorded the send for today before publishing.
type CheckinDue struct {
	Event
	UserID int64  `json:"user_id"`
	ChatID int64  `json:"chat_id"`
	Name   string `json:"name"`
}

// ReviewDue fires when a user's local clock matches their configured
// review time. HasEvents selects between the review nudge and the
// yes/no integrity prompt.
type ReviewDue struct {
	Event
	UserID    int64 `json:"user_id"`
	ChatID    int64 `json:"chat_id"`
	HasEvents bool  `json:"has_events"`
}

// PaymentSucceeded fires after reconciliation verified and applied a payment.
// LinkMessageID, when set, points at the checkout-link message to retract.
type PaymentSucceeded struct {
	Event
	UserID        int64     `json:"user_id"`
	ChatID        int64     `json:"chat_id"`
	PaymentID     string    `json:"payment_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	LinkChatID    int64     `json:"link_chat_id"`
	LinkMessageID int       `json:"link_message_id"`
}

// Event topics constants
const (
	TopicCheckinDue       = "checkin.due"
	TopicReviewDue        = "review.due"
	TopicPaymentSucceeded = "payment.succeeded"
)
