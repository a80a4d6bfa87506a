package payment

import "time"

// Status of a checkout attempt. The only transition is pending→succeeded.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSucceeded:
		return true
	default:
		return false
	}
}

// Payment is one checkout attempt. ProviderID is the processor's payment
// identifier and the join key for asynchronous confirmation callbacks.
type Payment struct {
	ID         int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64  `json:"user_id" gorm:"not null;index"`
	ChatID     int64  `json:"chat_id" gorm:"not null"`
	ProviderID string `json:"provider_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	Amount     string `json:"amount" gorm:"type:varchar(20);not null"`
	Currency   string `json:"currency" gorm:"type:varchar(8);not null"`
	Status     Status `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`

	// LinkMessageID remembers the chat message carrying the checkout link
	// so it can be retracted once the payment is confirmed.
	LinkMessageID *int `json:"link_message_id"`

	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
