package payment

// Repository defines persistence operations for checkout attempts.
type Repository interface {
	// Create stores a new pending payment.
	Create(p *Payment) error

	// GetByProviderID returns ErrPaymentNotFound for unknown identifiers.
	GetByProviderID(providerID string) (*Payment, error)

	// MarkSucceeded flips a pending payment to succeeded; a payment that
	// already succeeded reports ErrAlreadySucceeded so reprocessing a
	// duplicate notification stays a no-op.
	MarkSucceeded(providerID string) error

	// SetLinkMessage records the chat message that carried the checkout link.
	SetLinkMessage(providerID string, messageID int) error
}
