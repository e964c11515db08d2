package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "enrolld/pkg/domain-errors"
	"enrolld/pkg/platform/sentinel"
)

type WizardSuite struct {
	suite.Suite
	now time.Time
}

func TestWizardSuite(t *testing.T) {
	suite.Run(t, new(WizardSuite))
}

func (s *WizardSuite) SetupTest() {
	s.now = time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)
}

func (s *WizardSuite) TestNewSessionStartsAtIdentify() {
	sess := New(s.now)
	s.Equal(StepIdentify, sess.Step)
	s.NotEqual(uuid.Nil, sess.ID)
	s.Equal(s.now, sess.CreatedAt)
}

func (s *WizardSuite) TestAdvance() {
	s.Run("walks the happy path in order", func() {
		sess := New(s.now)
		s.Require().NoError(sess.Advance(StepValidateScore, s.now))
		s.Require().NoError(sess.Advance(StepConfirm, s.now))
		s.Require().NoError(sess.Advance(StepDone, s.now))
		s.Equal(StepDone, sess.Step)
	})

	s.Run("rejects skipping ahead", func() {
		sess := New(s.now)
		err := sess.Advance(StepDone, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(StepIdentify, sess.Step)
	})

	s.Run("confirm may repeat before finishing", func() {
		sess := New(s.now)
		s.Require().NoError(sess.Advance(StepValidateScore, s.now))
		s.Require().NoError(sess.Advance(StepConfirm, s.now))
		s.Require().NoError(sess.Advance(StepConfirm, s.now))
		s.Require().NoError(sess.Advance(StepDone, s.now))
	})

	s.Run("done may return to confirm for a revision", func() {
		sess := New(s.now)
		s.Require().NoError(sess.Advance(StepValidateScore, s.now))
		s.Require().NoError(sess.Advance(StepConfirm, s.now))
		s.Require().NoError(sess.Advance(StepDone, s.now))
		s.Require().NoError(sess.Advance(StepConfirm, s.now))
		s.Equal(StepConfirm, sess.Step)
	})

	s.Run("updates UpdatedAt on transition", func() {
		sess := New(s.now)
		later := s.now.Add(5 * time.Minute)
		s.Require().NoError(sess.Advance(StepValidateScore, later))
		s.Equal(later, sess.UpdatedAt)
	})
}

func (s *WizardSuite) TestRequire() {
	sess := New(s.now)
	s.Require().NoError(sess.Require(StepIdentify))

	err := sess.Require(StepConfirm)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *WizardSuite) TestInMemoryStore() {
	ctx := context.Background()

	s.Run("round-trips a session", func() {
		store := NewInMemoryStore()
		sess := New(s.now)
		sess.IsEntrant = true

		s.Require().NoError(store.Save(ctx, sess))

		found, err := store.Find(ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal(sess, found)
	})

	s.Run("returns ErrNotFound for unknown session", func() {
		store := NewInMemoryStore()
		_, err := store.Find(ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stored session is isolated from later mutation", func() {
		store := NewInMemoryStore()
		sess := New(s.now)
		s.Require().NoError(store.Save(ctx, sess))

		sess.Step = StepDone

		found, err := store.Find(ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal(StepIdentify, found.Step)
	})

	s.Run("delete removes the session", func() {
		store := NewInMemoryStore()
		sess := New(s.now)
		s.Require().NoError(store.Save(ctx, sess))
		s.Require().NoError(store.Delete(ctx, sess.ID))

		_, err := store.Find(ctx, sess.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
