package user

import "sync"

// MockRepository provides an in-memory Repository implementation for testing
type MockRepository struct {
	mu     sync.Mutex
	users  map[int64]*User // keyed by telegram ID
	nextID int64

	CreateErr error
	GetErr    error
	UpdateErr error
	ListErr   error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		users: make(map[int64]*User),
	}
}

func (m *MockRepository) Create(u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, exists := m.users[u.TelegramID]; exists {
		return nil
	}
	m.nextID++
	u.ID = m.nextID
	copied := *u
	m.users[u.TelegramID] = &copied
	return nil
}

func (m *MockRepository) GetByTelegramID(telegramID int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if u, exists := m.users[telegramID]; exists {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) GetByID(id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) Update(u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for tgID, existing := range m.users {
		if existing.ID == u.ID {
			copied := *u
			m.users[tgID] = &copied
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *MockRepository) ListWithTimezone() ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var users []*User
	for _, u := range m.users {
		if u.TimezoneOffset != nil {
			copied := *u
			users = append(users, &copied)
		}
	}
	return users, nil
}

func (m *MockRepository) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *MockRepository) ListAll() ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var users []*User
	for _, u := range m.users {
		copied := *u
		users = append(users, &copied)
	}
	return users, nil
}
