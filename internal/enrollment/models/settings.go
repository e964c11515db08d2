package models

import (
	"fmt"
	"strings"
	"time"
)

// Settings is the single global configuration document. Read-only to the
// whole flow; any missing required field is a startup failure, not a
// per-request error.
type Settings struct {
	ActiveTerm           string    `bson:"active_term"`
	EnrollmentWindowFrom time.Time `bson:"enrollment_window_from"`
	EnrollmentWindowTo   time.Time `bson:"enrollment_window_to"`
	ExemptionCutoffScore float64   `bson:"exemption_cutoff_score"`

	// Prediction formula: base + language*languageScore + writing*writingScore.
	FormulaBase     float64 `bson:"formula_base"`
	FormulaLanguage float64 `bson:"formula_language"`
	FormulaWriting  float64 `bson:"formula_writing"`

	// LanguagesLabel is the case-sensitive substring identifying the
	// languages subject in upstream score payloads.
	LanguagesLabel string `bson:"languages_label"`

	// ScoreAPIURL is the upstream scoring service endpoint.
	ScoreAPIURL string `bson:"score_api_url"`
}

// Validate reports every missing required field at once so operators fix the
// document in one pass.
func (s Settings) Validate() error {
	var missing []string
	if s.ActiveTerm == "" {
		missing = append(missing, "active_term")
	}
	if s.EnrollmentWindowFrom.IsZero() {
		missing = append(missing, "enrollment_window_from")
	}
	if s.EnrollmentWindowTo.IsZero() {
		missing = append(missing, "enrollment_window_to")
	}
	if s.ExemptionCutoffScore == 0 {
		missing = append(missing, "exemption_cutoff_score")
	}
	// An absent coefficient reads as 0 and would silently zero out every
	// predicted score, so all three are required.
	if s.FormulaBase == 0 {
		missing = append(missing, "formula_base")
	}
	if s.FormulaLanguage == 0 {
		missing = append(missing, "formula_language")
	}
	if s.FormulaWriting == 0 {
		missing = append(missing, "formula_writing")
	}
	if s.LanguagesLabel == "" {
		missing = append(missing, "languages_label")
	}
	if s.ScoreAPIURL == "" {
		missing = append(missing, "score_api_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("settings document incomplete, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// WindowOpen reports whether now falls inside the enrollment window. Both
// boundaries are compared in UTC and inclusive.
func (s Settings) WindowOpen(now time.Time) bool {
	now = now.UTC()
	return !now.Before(s.EnrollmentWindowFrom.UTC()) && !now.After(s.EnrollmentWindowTo.UTC())
}
