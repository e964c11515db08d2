package wizard

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"enrolld/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed session store for tests and single-node
// development. It does not expire sessions.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[uuid.UUID]Session)}
}

// Save stores a copy of the session.
func (m *InMemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// Find returns a copy of the stored session or sentinel.ErrNotFound.
func (m *InMemoryStore) Find(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := s
	return &out, nil
}

// Delete removes the session if present.
func (m *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
