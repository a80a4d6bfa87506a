package events

import (
	"fmt"
	"sync"
)

// MockEventBus provides an in-memory implementation of EventBus for testing.
// Publishes are recorded and delivered synchronously to matching handlers.
type MockEventBus struct {
	mu              sync.RWMutex
	subscriptions   map[string][]interface{}
	publishedEvents map[string][]interface{}
	closed          bool

	PublishErr error
}

// NewMockEventBus creates a new MockEventBus instance
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscriptions:   make(map[string][]interface{}),
		publishedEvents: make(map[string][]interface{}),
	}
}

func (m *MockEventBus) Subscribe(topic string, handler interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscriptions[topic] = append(m.subscriptions[topic], handler)
	return nil
}

func (m *MockEventBus) Unsubscribe(topic string, handler interface{}) error {
	return nil
}

func (m *MockEventBus) Publish(topic string, event interface{}) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("event bus is closed")
	}
	if m.PublishErr != nil {
		err := m.PublishErr
		m.mu.Unlock()
		return err
	}
	m.publishedEvents[topic] = append(m.publishedEvents[topic], event)
	handlers := append([]interface{}(nil), m.subscriptions[topic]...)
	m.mu.Unlock()

	// Synchronous delivery keeps tests deterministic
	for _, h := range handlers {
		switch fn := h.(type) {
		case func(CheckinDue):
			if e, ok := event.(CheckinDue); ok {
				fn(e)
			}
		case func(ReviewDue):
			if e, ok := event.(ReviewDue); ok {
				fn(e)
			}
		case func(PaymentSucceeded):
			if e, ok := event.(PaymentSucceeded); ok {
				fn(e)
			}
		case func(interface{}):
			fn(event)
		}
	}

	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Published returns the events recorded for a topic.
func (m *MockEventBus) Published(topic string) []interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]interface{}(nil), m.publishedEvents[topic]...)
}
