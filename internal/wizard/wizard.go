// Package wizard models the enrollment flow as an explicit finite-state
// session instead of ambient page state: each HTTP step loads the session,
// checks it is in the right state, and advances it.
package wizard

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"enrolld/internal/enrollment/models"
	dErrors "enrolld/pkg/domain-errors"
)

// Step is a wizard state.
type Step string

const (
	StepIdentify      Step = "identify"
	StepValidateScore Step = "validate_score"
	StepConfirm       Step = "confirm"
	StepDone          Step = "done"
)

// transitions maps each step to the steps reachable from it. Confirm loops to
// itself so a student can revise choices before finishing, and Done loops
// back to Confirm for post-submission changes within the window.
var transitions = map[Step][]Step{
	StepIdentify:      {StepValidateScore},
	StepValidateScore: {StepConfirm},
	StepConfirm:       {StepConfirm, StepDone},
	StepDone:          {StepConfirm},
}

// Session is the explicit flow context threaded through the wizard steps. It
// accumulates what later steps need; nothing here is authoritative once the
// enrollment record is stored.
type Session struct {
	ID        uuid.UUID                `json:"id"`
	Step      Step                     `json:"step"`
	Student   models.StudentIdentity   `json:"student"`
	IsEntrant bool                     `json:"is_entrant"`
	Record    *models.ScoreRecord      `json:"score_record,omitempty"`
	Derived   *models.DerivedScore     `json:"derived,omitempty"`
	Saved     *models.EnrollmentRecord `json:"saved,omitempty"`
	IsUpdate  bool                     `json:"is_update"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// New starts a session at the identification step.
func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Step:      StepIdentify,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Require returns an error unless the session is at the given step. The
// message tells the student which step to redo rather than failing opaquely.
func (s *Session) Require(step Step) error {
	if s.Step != step {
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("this session is at the %q step; restart from the expected step %q", s.Step, step))
	}
	return nil
}

// Advance moves the session to next if the transition is legal.
func (s *Session) Advance(next Step, now time.Time) error {
	for _, allowed := range transitions[s.Step] {
		if allowed == next {
			s.Step = next
			s.UpdatedAt = now
			return nil
		}
	}
	return dErrors.New(dErrors.CodeConflict,
		fmt.Sprintf("illegal step transition from %q to %q", s.Step, next))
}
