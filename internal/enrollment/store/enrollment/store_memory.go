package enrollment

import (
	"context"
	"sync"

	"enrolld/internal/enrollment/models"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/requestcontext"
)

// InMemory implements the enrollment store with the same set-on-insert
// semantics as the Mongo store. Used in tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	records map[key]models.EnrollmentRecord
}

type key struct {
	token string
	term  string
}

// NewInMemory creates an empty in-memory enrollment store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[key]models.EnrollmentRecord)}
}

func (s *InMemory) FindByTokenAndTerm(ctx context.Context, token, term string) (*models.EnrollmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key{token: token, term: term}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

func (s *InMemory) Upsert(ctx context.Context, rec models.EnrollmentRecord) (*models.EnrollmentRecord, bool, error) {
	now := requestcontext.Now(ctx).UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{token: rec.Token, term: rec.Term}
	existing, ok := s.records[k]
	if !ok {
		rec.CreatedAt = now
		rec.UpdatedAt = now
		s.records[k] = rec
		return &rec, true, nil
	}

	// First write wins on everything except the choice fields.
	existing.ChosenSection = rec.ChosenSection
	existing.ChosenOption = rec.ChosenOption
	existing.UpdatedAt = now
	s.records[k] = existing
	return &existing, false, nil
}
