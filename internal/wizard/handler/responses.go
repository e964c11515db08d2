package handler

import (
	"enrolld/internal/enrollment/models"
	"enrolld/internal/enrollment/service"
	"enrolld/internal/wizard"
)

// IdentifyResponse is the HTTP response for POST /enroll/identify.
type IdentifyResponse struct {
	SessionToken string                 `json:"session_token"`
	Student      models.StudentIdentity `json:"student"`
	IsEntrant    bool                   `json:"is_entrant"`
	NextStep     string                 `json:"next_step"`
}

// ScoreResponse is the HTTP response for POST /enroll/score.
type ScoreResponse struct {
	Student        models.StudentIdentity `json:"student"`
	WritingScore   models.Score           `json:"writing_score"`
	LanguageScore  models.Score           `json:"language_score"`
	PredictedScore float64                `json:"predicted_score"`
	IsUpdate       bool                   `json:"is_update"`
	PriorSection   string                 `json:"prior_section,omitempty"`
	PriorOption    string                 `json:"prior_option,omitempty"`
	NextStep       string                 `json:"next_step"`
}

func scoreResponseFrom(res *service.ValidateResult, next wizard.Step) ScoreResponse {
	out := ScoreResponse{
		Student:        res.Student,
		WritingScore:   res.Derived.Writing,
		LanguageScore:  res.Derived.Language,
		PredictedScore: res.Derived.Predicted,
		IsUpdate:       res.IsUpdate,
		NextStep:       string(next),
	}
	if res.Existing != nil {
		out.PriorSection = res.Existing.ChosenSection
		out.PriorOption = string(res.Existing.ChosenOption)
	}
	return out
}

// OptionsResponse is the HTTP response for GET /enroll/options.
type OptionsResponse struct {
	Sections       []string              `json:"sections"`
	AllowedOptions []models.ChoiceOption `json:"allowed_options"`
	CutoffScore    float64               `json:"cutoff_score"`
}

// SubmitResponse is the HTTP response for POST /enroll/submit.
type SubmitResponse struct {
	Created  bool                    `json:"created"`
	Record   models.EnrollmentRecord `json:"record"`
	NextStep string                  `json:"next_step"`
}
