package payment

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider provides an in-memory Provider implementation for testing
type MockProvider struct {
	mu       sync.Mutex
	statuses map[string]string
	nextID   int

	CreateErr error
	StatusErr error

	// CreatedRequests records every create call for assertions.
	CreatedRequests []CreatePaymentRequest
}

// NewMockProvider creates a new mock payment provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		statuses: make(map[string]string),
	}
}

func (m *MockProvider) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	id := fmt.Sprintf("mock-payment-%d", m.nextID)
	m.statuses[id] = ProviderStatusPending
	m.CreatedRequests = append(m.CreatedRequests, req)

	return &Checkout{
		ProviderID:      id,
		ConfirmationURL: "https://pay.example.com/" + id,
	}, nil
}

func (m *MockProvider) GetPaymentStatus(ctx context.Context, providerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StatusErr != nil {
		return "", m.StatusErr
	}
	status, exists := m.statuses[providerID]
	if !exists {
		return "", ErrPaymentNotFound
	}
	return status, nil
}

// SetStatus sets the processor-side status for a payment, for tests.
func (m *MockProvider) SetStatus(providerID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[providerID] = status
}
