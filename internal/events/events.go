// Package events publishes enrollment lifecycle events for downstream
// consumers (seat planning, notifications). Publishing is best-effort: a
// broker outage must never fail a student's submission.
package events

import (
	"context"
	"time"

	"enrolld/internal/enrollment/models"
)

// Event is the wire format for enrollment lifecycle events.
type Event struct {
	Type               string    `json:"type"`
	Token              string    `json:"token"`
	Term               string    `json:"term"`
	RegistrationNumber string    `json:"registration_number"`
	ChosenSection      string    `json:"chosen_section"`
	ChosenOption       string    `json:"chosen_option"`
	OccurredAt         time.Time `json:"occurred_at"`
}

const (
	TypeCreated = "enrollment.created"
	TypeUpdated = "enrollment.updated"
)

// Publisher emits enrollment events.
type Publisher interface {
	EnrollmentSaved(ctx context.Context, rec models.EnrollmentRecord, created bool)
}

// NewEvent builds the event for a saved enrollment.
func NewEvent(rec models.EnrollmentRecord, created bool) Event {
	typ := TypeUpdated
	if created {
		typ = TypeCreated
	}
	return Event{
		Type:               typ,
		Token:              rec.Token,
		Term:               rec.Term,
		RegistrationNumber: rec.Student.RegistrationNumber,
		ChosenSection:      rec.ChosenSection,
		ChosenOption:       string(rec.ChosenOption),
		OccurredAt:         rec.UpdatedAt,
	}
}

// Noop drops all events. Used when no broker is configured.
type Noop struct{}

func (Noop) EnrollmentSaved(context.Context, models.EnrollmentRecord, bool) {}
