package enrollment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"enrolld/internal/enrollment/models"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/requestcontext"
)

type EnrollmentStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *EnrollmentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestEnrollmentStoreSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentStoreSuite))
}

func (s *EnrollmentStoreSuite) newRecord() models.EnrollmentRecord {
	return models.EnrollmentRecord{
		Student: models.StudentIdentity{
			RegistrationNumber: "20240012345",
			FullName:           "José Silva",
			CourseName:         "Letras",
		},
		ChosenSection: "Section A",
		ChosenOption:  models.OptionAttend,
		Token:         "zDdMdIblbpDr/DxLOPgr6w==",
		Term:          "2024.2",
		Scores: models.DerivedScore{
			Writing:   models.ValidScore(650.4),
			Language:  models.ValidScore(512.3),
			Predicted: 6.3,
		},
	}
}

func (s *EnrollmentStoreSuite) TestFindMissing() {
	_, err := s.store.FindByTokenAndTerm(s.ctx, "nope==", "2024.2")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *EnrollmentStoreSuite) TestFirstWriteCreates() {
	rec := s.newRecord()
	stored, created, err := s.store.Upsert(s.ctx, rec)
	s.Require().NoError(err)
	s.True(created)
	s.False(stored.CreatedAt.IsZero())
	s.Equal(stored.CreatedAt, stored.UpdatedAt)

	found, err := s.store.FindByTokenAndTerm(s.ctx, rec.Token, rec.Term)
	s.Require().NoError(err)
	s.Equal("Section A", found.ChosenSection)
}

// TestUpsertIdempotence verifies that a resubmission with the same
// (token, term) merges into the first record: choice fields take the second
// call's values, everything else keeps the first call's.
func (s *EnrollmentStoreSuite) TestUpsertIdempotence() {
	first := s.newRecord()
	t0 := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	_, created, err := s.store.Upsert(requestcontext.WithTime(s.ctx, t0), first)
	s.Require().NoError(err)
	s.Require().True(created)

	second := first
	second.ChosenSection = "Section B"
	second.ChosenOption = models.OptionExempt
	// A hostile or buggy caller passes different non-choice values too.
	second.Student.FullName = "Someone Else"
	second.Scores.Predicted = 9.99

	t1 := t0.Add(2 * time.Hour)
	stored, created, err := s.store.Upsert(requestcontext.WithTime(s.ctx, t1), second)
	s.Require().NoError(err)
	s.False(created)

	s.Equal("Section B", stored.ChosenSection)
	s.Equal(models.OptionExempt, stored.ChosenOption)
	s.Equal(t1, stored.UpdatedAt)

	// Set-on-insert fields keep the first submission's values.
	s.Equal("José Silva", stored.Student.FullName)
	s.Equal(6.3, stored.Scores.Predicted)
	s.Equal(t0, stored.CreatedAt)

	// Still exactly one record for the key.
	found, err := s.store.FindByTokenAndTerm(s.ctx, first.Token, first.Term)
	s.Require().NoError(err)
	s.Equal(*stored, *found)
}

func (s *EnrollmentStoreSuite) TestDistinctTermsAreDistinctRecords() {
	rec := s.newRecord()
	_, created, err := s.store.Upsert(s.ctx, rec)
	s.Require().NoError(err)
	s.True(created)

	other := rec
	other.Term = "2025.1"
	_, created, err = s.store.Upsert(s.ctx, other)
	s.Require().NoError(err)
	s.True(created)
}

func (s *EnrollmentStoreSuite) TestConcurrentUpsertsSameKey() {
	rec := s.newRecord()
	var wg sync.WaitGroup
	createdCount := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := s.store.Upsert(s.ctx, rec)
			s.NoError(err)
			createdCount <- created
		}()
	}
	wg.Wait()
	close(createdCount)

	creates := 0
	for c := range createdCount {
		if c {
			creates++
		}
	}
	s.Equal(1, creates, "racing upserts on one key must insert exactly once")
}
