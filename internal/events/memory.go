package events

import (
	"context"
	"sync"

	"enrolld/internal/enrollment/models"
)

// Memory collects events in-process for tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory creates an empty in-memory event sink.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) EnrollmentSaved(_ context.Context, rec models.EnrollmentRecord, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, NewEvent(rec, created))
}

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
