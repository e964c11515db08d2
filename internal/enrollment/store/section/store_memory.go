package section

import (
	"context"
	"sort"
	"sync"
)

// InMemory serves section lists from a per-term map.
type InMemory struct {
	mu     sync.RWMutex
	byTerm map[string][]string
}

// NewInMemory creates a section store.
func NewInMemory() *InMemory {
	return &InMemory{byTerm: make(map[string][]string)}
}

// Add registers an active section for a term.
func (s *InMemory) Add(term, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTerm[term] = append(s.byTerm[term], name)
}

func (s *InMemory) ListAvailable(ctx context.Context, term string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := append([]string(nil), s.byTerm[term]...)
	sort.Strings(names)
	return names, nil
}
