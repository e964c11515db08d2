//go:build integration

package enrollment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"enrolld/internal/enrollment/models"
	"enrolld/internal/enrollment/store/enrollment"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/requestcontext"
	"enrolld/pkg/testutil/containers"
)

type MongoStoreSuite struct {
	suite.Suite
	mongo *containers.MongoContainer
	store *enrollment.MongoStore
}

func TestMongoStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoStoreSuite))
}

func (s *MongoStoreSuite) SetupSuite() {
	s.mongo = containers.NewMongoContainer(s.T())
}

func (s *MongoStoreSuite) TearDownSuite() {
	ctx := context.Background()
	_ = s.mongo.Client.Disconnect(ctx)
	_ = s.mongo.Container.Terminate(ctx)
}

func (s *MongoStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.mongo.Drop(ctx, "enrolld_test"))
	s.store = enrollment.NewMongo(s.mongo.Client.Database("enrolld_test"))
	s.Require().NoError(s.store.EnsureIndexes(ctx))
}

// record builds an upsert input. Timestamps are stamped by the store from
// the request clock, so the helper leaves them zero.
func record(token, term, section string) models.EnrollmentRecord {
	return models.EnrollmentRecord{
		Student: models.StudentIdentity{
			RegistrationNumber: "20230054321",
			FullName:           "José da Silva",
			CourseName:         "Computer Science",
		},
		ChosenSection: section,
		ChosenOption:  models.OptionAttend,
		Token:         token,
		Term:          term,
		Scores: models.DerivedScore{
			Writing:   models.ValidScore(820),
			Language:  models.ValidScore(611.5),
			Predicted: 7.55,
		},
	}
}

func (s *MongoStoreSuite) TestFindMissingReturnsNotFound() {
	_, err := s.store.FindByTokenAndTerm(context.Background(), "absent==", "2024.2")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MongoStoreSuite) TestUpsertCreatesThenUpdates() {
	firstAt := time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), firstAt)

	created, wasCreated, err := s.store.Upsert(ctx, record("tok==", "2024.2", "Section 01"))
	s.Require().NoError(err)
	s.True(wasCreated)
	s.Equal("Section 01", created.ChosenSection)

	// Resubmission with different identity fields must only change the
	// choice fields; everything else keeps its first-write values.
	second := record("tok==", "2024.2", "Section 02")
	second.Student.FullName = "Someone Else"
	second.Scores.Predicted = 9.99

	ctx = requestcontext.WithTime(context.Background(), firstAt.Add(48*time.Hour))
	updated, wasCreated, err := s.store.Upsert(ctx, second)
	s.Require().NoError(err)
	s.False(wasCreated)
	s.Equal("Section 02", updated.ChosenSection)
	s.Equal("José da Silva", updated.Student.FullName)
	s.InDelta(7.55, updated.Scores.Predicted, 0.001)
	s.True(updated.CreatedAt.Equal(created.CreatedAt))
	s.True(updated.UpdatedAt.After(created.UpdatedAt))
}

func (s *MongoStoreSuite) TestDistinctTermsStayDistinct() {
	ctx := context.Background()

	_, created1, err := s.store.Upsert(ctx, record("tok==", "2024.1", "Section 01"))
	s.Require().NoError(err)
	s.True(created1)

	_, created2, err := s.store.Upsert(ctx, record("tok==", "2024.2", "Section 02"))
	s.Require().NoError(err)
	s.True(created2)

	first, err := s.store.FindByTokenAndTerm(ctx, "tok==", "2024.1")
	s.Require().NoError(err)
	s.Equal("Section 01", first.ChosenSection)

	second, err := s.store.FindByTokenAndTerm(ctx, "tok==", "2024.2")
	s.Require().NoError(err)
	s.Equal("Section 02", second.ChosenSection)
}

func (s *MongoStoreSuite) TestConcurrentUpsertCreatesExactlyOnce() {
	ctx := context.Background()

	createdCount := 0
	results := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, created, err := s.store.Upsert(ctx, record("tok==", "2024.2", "Section 01"))
			s.NoError(err)
			results <- created
		}()
	}
	for i := 0; i < 10; i++ {
		if <-results {
			createdCount++
		}
	}
	s.Equal(1, createdCount)
}
