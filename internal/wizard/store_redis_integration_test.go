//go:build integration

package wizard_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"enrolld/internal/wizard"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *wizard.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisStoreSuite) TearDownSuite() {
	ctx := context.Background()
	_ = s.redis.Client.Close()
	_ = s.redis.Container.Terminate(ctx)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.store = wizard.NewRedisStore(s.redis.Client, time.Hour)
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	now := time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)

	sess := wizard.New(now)
	sess.IsEntrant = true
	s.Require().NoError(sess.Advance(wizard.StepValidateScore, now))

	s.Require().NoError(s.store.Save(ctx, sess))

	found, err := s.store.Find(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, found.ID)
	s.Equal(wizard.StepValidateScore, found.Step)
	s.True(found.IsEntrant)
	s.True(found.CreatedAt.Equal(sess.CreatedAt))
}

func (s *RedisStoreSuite) TestMissingSessionReturnsNotFound() {
	_, err := s.store.Find(context.Background(), uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestExpiredSessionIsGone() {
	ctx := context.Background()
	short := wizard.NewRedisStore(s.redis.Client, time.Second)

	sess := wizard.New(time.Now())
	s.Require().NoError(short.Save(ctx, sess))

	s.Require().Eventually(func() bool {
		_, err := short.Find(ctx, sess.ID)
		return err != nil
	}, 5*time.Second, 250*time.Millisecond)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	sess := wizard.New(time.Now())
	s.Require().NoError(s.store.Save(ctx, sess))
	s.Require().NoError(s.store.Delete(ctx, sess.ID))

	_, err := s.store.Find(ctx, sess.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
