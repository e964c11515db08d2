// Package service orchestrates the enrollment flow: identification, score
// validation, choice gating and the idempotent submission.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"enrolld/internal/enrollment/metrics"
	"enrolld/internal/enrollment/models"
	"enrolld/internal/enrollment/names"
	"enrolld/internal/events"
	"enrolld/internal/score/fetch"
	"enrolld/internal/score/normalize"
	dErrors "enrolld/pkg/domain-errors"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/requestcontext"
)

// EnrollmentStore is the (token, term)-keyed enrollment repository.
type EnrollmentStore interface {
	FindByTokenAndTerm(ctx context.Context, token, term string) (*models.EnrollmentRecord, error)
	Upsert(ctx context.Context, rec models.EnrollmentRecord) (*models.EnrollmentRecord, bool, error)
}

// RosterStore resolves registration numbers against the course rosters.
type RosterStore interface {
	FindByRegistrationNumber(ctx context.Context, number string) (*models.StudentIdentity, error)
}

// SectionStore lists the sections open for a term.
type SectionStore interface {
	ListAvailable(ctx context.Context, term string) ([]string, error)
}

// ScoreClient fetches the upstream score payload for a validation token.
type ScoreClient interface {
	Fetch(ctx context.Context, token string) (*normalize.Payload, error)
}

// Service wires the enrollment flow together.
type Service struct {
	enrollments EnrollmentStore
	roster      RosterStore
	sections    SectionStore
	scores      ScoreClient
	settings    models.Settings
	events      events.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New constructs the enrollment service.
func New(
	enrollments EnrollmentStore,
	roster RosterStore,
	sections SectionStore,
	scores ScoreClient,
	settings models.Settings,
	publisher events.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		enrollments: enrollments,
		roster:      roster,
		sections:    sections,
		scores:      scores,
		settings:    settings,
		events:      publisher,
		logger:      logger,
		metrics:     m,
	}
}

// Settings exposes the loaded configuration document (read-only).
func (s *Service) Settings() models.Settings { return s.settings }

// CheckWindow rejects any operation outside the enrollment window.
func (s *Service) CheckWindow(ctx context.Context) error {
	now := requestcontext.Now(ctx)
	if s.settings.WindowOpen(now) {
		return nil
	}
	from := s.settings.EnrollmentWindowFrom.UTC()
	to := s.settings.EnrollmentWindowTo.UTC()
	if now.UTC().Before(from) {
		return dErrors.New(dErrors.CodeForbidden,
			fmt.Sprintf("enrollment has not started yet; the window opens %s", from.Format("02/01/2006 15:04")))
	}
	return dErrors.New(dErrors.CodeForbidden,
		fmt.Sprintf("enrollment closed on %s", to.Format("02/01/2006 15:04")))
}

// IdentifyResult is the outcome of the identification step.
type IdentifyResult struct {
	Student   models.StudentIdentity
	IsEntrant bool
}

// Identify resolves a registration number to a student identity. Numbers not
// in any roster are accepted as new entrants when they are all digits and
// start with the current year; anything else is rejected.
func (s *Service) Identify(ctx context.Context, registrationNumber string) (*IdentifyResult, error) {
	registrationNumber = strings.TrimSpace(registrationNumber)
	if registrationNumber == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "registration number is required")
	}

	student, err := s.roster.FindByRegistrationNumber(ctx, registrationNumber)
	if err == nil {
		return &IdentifyResult{Student: *student}, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "roster lookup failed")
	}

	if isEntrantNumber(registrationNumber, requestcontext.Now(ctx).Year()) {
		// Probable first-time entrant; the exam record will confirm the
		// name and the course stays unconfirmed until the roster import.
		return &IdentifyResult{
			Student: models.StudentIdentity{
				RegistrationNumber: registrationNumber,
				CourseName:         models.CourseUnconfirmed,
			},
			IsEntrant: true,
		}, nil
	}

	return nil, dErrors.New(dErrors.CodeNotFound,
		"registration number not found; check that you typed it correctly and try again")
}

func isEntrantNumber(number string, year int) bool {
	if !strings.HasPrefix(number, strconv.Itoa(year)) {
		return false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateResult is the outcome of the score-validation step.
type ValidateResult struct {
	Student  models.StudentIdentity
	Record   models.ScoreRecord
	Derived  models.DerivedScore
	Existing *models.EnrollmentRecord
	IsUpdate bool
}

// ValidateScore fetches and verifies the exam record for the token. For
// entrants the exam name becomes authoritative; everyone else must pass the
// name cross-check. A prior enrollment for (token, activeTerm) flags the
// session as an update and surfaces the previous choices.
func (s *Service) ValidateScore(ctx context.Context, student models.StudentIdentity, isEntrant bool, token string) (*ValidateResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "attach a valid score report or paste the validation token to continue")
	}

	payload, err := s.scores.Fetch(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, fetch.ErrInvalidResponse):
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable,
				"the scoring service returned an unexpected response; try again later")
		case errors.Is(err, fetch.ErrUnreachable):
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable,
				"could not validate your scores; the scoring service may be unstable or the token invalid")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "score validation failed")
		}
	}

	// The upstream echoes the canonical token; prefer it over user input.
	canonical := payload.Hash
	if canonical == "" {
		canonical = token
	}

	examName := payload.Name
	if isEntrant {
		student.FullName = examName
		student.CourseName = models.CourseUnconfirmed
	} else if !names.Match(student.FullName, examName) {
		if s.metrics != nil {
			s.metrics.IdentityMismatches.Inc()
		}
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
			"the exam record name (%q) does not match the enrolled name (%q); check the report or token and try again",
			examName, student.FullName))
	}

	derived := normalize.Relevant(payload, normalize.Formula{
		Base:           s.settings.FormulaBase,
		Language:       s.settings.FormulaLanguage,
		Writing:        s.settings.FormulaWriting,
		LanguagesLabel: s.settings.LanguagesLabel,
	})

	record := models.ScoreRecord{
		Token:        canonical,
		DeclaredName: examName,
		Writing:      derived.Writing,
		Language:     derived.Language,
	}

	result := &ValidateResult{
		Student: student,
		Record:  record,
		Derived: derived,
	}

	existing, err := s.enrollments.FindByTokenAndTerm(ctx, canonical, s.settings.ActiveTerm)
	if err == nil {
		result.Existing = existing
		result.IsUpdate = true
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "enrollment lookup failed")
	}

	return result, nil
}

// OptionsResult describes what the student may choose.
type OptionsResult struct {
	Sections       []string
	AllowedOptions []models.ChoiceOption
	CutoffScore    float64
}

// Options lists the open sections for the active term and the choice options
// allowed for the given predicted score. Exemption requires meeting the
// cutoff.
func (s *Service) Options(ctx context.Context, predicted float64) (*OptionsResult, error) {
	sections, err := s.sections.ListAvailable(ctx, s.settings.ActiveTerm)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "section lookup failed")
	}

	allowed := []models.ChoiceOption{models.OptionAttend}
	if predicted >= s.settings.ExemptionCutoffScore {
		allowed = append(allowed, models.OptionExempt)
	}

	return &OptionsResult{
		Sections:       sections,
		AllowedOptions: allowed,
		CutoffScore:    s.settings.ExemptionCutoffScore,
	}, nil
}

// SubmitRequest carries everything needed for the final upsert.
type SubmitRequest struct {
	Student models.StudentIdentity
	Token   string
	Derived models.DerivedScore
	Section string
	Option  models.ChoiceOption
}

// SubmitResult is the stored record plus whether this submission created it.
type SubmitResult struct {
	Record  models.EnrollmentRecord
	Created bool
}

// Submit validates the choice and performs the idempotent upsert. On
// resubmission only the choice fields change; the stored identity, scores and
// creation time keep their original values.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if req.Token == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "score validation must complete before submitting")
	}
	if !req.Option.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "choose whether to attend or request exemption")
	}
	if req.Option == models.OptionExempt && req.Derived.Predicted < s.settings.ExemptionCutoffScore {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
			"a predicted score of at least %.2f is required for exemption; only attending is available", s.settings.ExemptionCutoffScore))
	}

	sections, err := s.sections.ListAvailable(ctx, s.settings.ActiveTerm)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "section lookup failed")
	}
	if len(sections) > 0 && !slices.Contains(sections, req.Section) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "select one of the available sections")
	}

	stored, created, err := s.enrollments.Upsert(ctx, models.EnrollmentRecord{
		Student:       req.Student,
		ChosenSection: req.Section,
		ChosenOption:  req.Option,
		Token:         req.Token,
		Term:          s.settings.ActiveTerm,
		Scores:        req.Derived,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// The atomic upsert should make this impossible; report it
			// rather than retrying into an inconsistent state.
			return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "enrollment save conflicted; contact support")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not save your enrollment, try again")
	}

	if s.metrics != nil {
		if created {
			s.metrics.EnrollmentsCreated.Inc()
		} else {
			s.metrics.EnrollmentsUpdated.Inc()
		}
	}
	s.events.EnrollmentSaved(ctx, *stored, created)
	s.logger.InfoContext(ctx, "enrollment saved",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", requestcontext.SessionID(ctx),
		"term", stored.Term,
		"registration_number", stored.Student.RegistrationNumber,
		"section", stored.ChosenSection,
		"option", stored.ChosenOption,
		"created", created,
	)

	return &SubmitResult{Record: *stored, Created: created}, nil
}
