package journal

import (
	"sync"
	"time"
)

// MockRepository provides an in-memory Repository implementation for testing
type MockRepository struct {
	mu     sync.Mutex
	events map[int64]*Event
	nextID int64

	AppendErr error
	ListErr   error
	SaveErr   error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		events: make(map[int64]*Event),
	}
}

func (m *MockRepository) Append(event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.nextID++
	event.ID = m.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	copied := *event
	m.events[event.ID] = &copied
	return nil
}

func (m *MockRepository) ListUnanalyzed(userID int64, from, to time.Time) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var result []*Event
	for id := int64(1); id <= m.nextID; id++ {
		e, exists := m.events[id]
		if !exists {
			continue
		}
		if e.UserID != userID || e.Analyzed {
			continue
		}
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		copied := *e
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MockRepository) SaveAnalysis(eventID int64, analysis string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	e, exists := m.events[eventID]
	if !exists || e.Analyzed {
		return ErrEventNotFound
	}
	e.Analysis = analysis
	e.Analyzed = true
	return nil
}

func (m *MockRepository) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.events)), nil
}

// Get returns a stored event by ID, for test assertions.
func (m *MockRepository) Get(eventID int64) *Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, exists := m.events[eventID]; exists {
		copied := *e
		return &copied
	}
	return nil
}
