package handler

import (
	"strings"

	"enrolld/internal/enrollment/models"
	dErrors "enrolld/pkg/domain-errors"
)

// IdentifyRequest is the HTTP request body for POST /enroll/identify.
type IdentifyRequest struct {
	RegistrationNumber string `json:"registration_number"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *IdentifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.RegistrationNumber = strings.TrimSpace(r.RegistrationNumber)
	if r.RegistrationNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "registration_number is required")
	}
	if len(r.RegistrationNumber) > 32 {
		return dErrors.New(dErrors.CodeValidation, "registration_number must be at most 32 characters")
	}
	return nil
}

// ScoreRequest is the JSON body for POST /enroll/score when the student
// pastes the token instead of uploading the report.
type ScoreRequest struct {
	Token string `json:"token"`
}

// Validate validates and normalizes the request.
func (r *ScoreRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}

// SubmitRequest is the HTTP request body for POST /enroll/submit.
type SubmitRequest struct {
	Section string `json:"section"`
	Option  string `json:"option"`

	parsedOption models.ChoiceOption
}

// Validate validates and parses the request.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Section = strings.TrimSpace(r.Section)
	option := models.ChoiceOption(strings.TrimSpace(r.Option))
	if !option.Valid() {
		return dErrors.New(dErrors.CodeValidation, "option must be \"attend\" or \"exempt\"")
	}
	r.parsedOption = option
	return nil
}

// ParsedOption returns the validated choice option.
func (r *SubmitRequest) ParsedOption() models.ChoiceOption {
	return r.parsedOption
}
