package payment

import "sync"

// MockRepository provides an in-memory Repository implementation for testing
type MockRepository struct {
	mu       sync.Mutex
	payments map[string]*Payment
	nextID   int64

	CreateErr error
	GetErr    error
	MarkErr   error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		payments: make(map[string]*Payment),
	}
}

func (m *MockRepository) Create(p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.nextID++
	p.ID = m.nextID
	if p.Status == "" {
		p.Status = StatusPending
	}
	copied := *p
	m.payments[p.ProviderID] = &copied
	return nil
}

func (m *MockRepository) GetByProviderID(providerID string) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if p, exists := m.payments[providerID]; exists {
		copied := *p
		return &copied, nil
	}
	return nil, ErrPaymentNotFound
}

func (m *MockRepository) MarkSucceeded(providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.MarkErr != nil {
		return m.MarkErr
	}
	p, exists := m.payments[providerID]
	if !exists {
		return ErrPaymentNotFound
	}
	if p.Status == StatusSucceeded {
		return ErrAlreadySucceeded
	}
	p.Status = StatusSucceeded
	return nil
}

func (m *MockRepository) SetLinkMessage(providerID string, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.payments[providerID]
	if !exists {
		return ErrPaymentNotFound
	}
	p.LinkMessageID = &messageID
	return nil
}
