package payment

import "context"

// Checkout is the processor's answer to a create-payment request.
type Checkout struct {
	ProviderID      string
	ConfirmationURL string
}

// Provider defines the contract with the external payment processor.
// The processor is the source of truth for payment status: webhook
// notifications are verified through GetPaymentStatus before any local
// state changes.
type Provider interface {
	// CreatePayment opens a checkout session and returns the processor's
	// payment identifier plus the URL the user completes payment at.
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Checkout, error)

	// GetPaymentStatus fetches the authoritative status for a payment.
	GetPaymentStatus(ctx context.Context, providerID string) (string, error)
}

// CreatePaymentRequest carries everything a checkout session needs.
type CreatePaymentRequest struct {
	Amount      string
	Currency    string
	Description string
	ReturnURL   string
	UserID      int64
}

// Processor-side status values.
const (
	ProviderStatusPending   = "pending"
	ProviderStatusSucceeded = "succeeded"
)
