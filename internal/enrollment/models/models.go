package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// CourseUnconfirmed marks a new entrant whose course assignment is not yet in
// the roster. Set-on-insert keeps it until the roster import catches up.
const CourseUnconfirmed = "unconfirmed"

// StudentIdentity is fixed at the identification step. Once confirmed it is
// immutable except CourseName for first-time entrants, which is filled from
// the exam record.
type StudentIdentity struct {
	RegistrationNumber string `bson:"registration_number" json:"registration_number"`
	FullName           string `bson:"full_name" json:"full_name"`
	CourseName         string `bson:"course_name" json:"course_name"`
}

// Score is a sub-score that may be absent upstream. An absent score stays
// distinguishable from a numeric zero in everything shown to the student; only
// the prediction formula treats it as zero.
type Score struct {
	Value float64 `bson:"value"`
	Valid bool    `bson:"valid"`
}

// Unavailable is the marker for a score the upstream did not report.
func Unavailable() Score { return Score{} }

// ValidScore wraps a reported numeric score.
func ValidScore(v float64) Score { return Score{Value: v, Valid: true} }

// OrZero returns the numeric value for the prediction formula.
func (s Score) OrZero() float64 {
	if !s.Valid {
		return 0
	}
	return s.Value
}

// String renders the display value, "N/A" when absent.
func (s Score) String() string {
	if !s.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(s.Value)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		// Non-numeric payloads ("N/A") mean unavailable.
		*s = Score{}
		return nil
	}
	*s = ValidScore(v)
	return nil
}

// ScoreRecord is what the Score Fetcher hands back: the validated token, the
// name the exam knows the student by, and the two relevant sub-scores.
// Read-only after creation.
type ScoreRecord struct {
	Token        string `bson:"token" json:"token"`
	DeclaredName string `bson:"declared_name" json:"declared_name"`
	Writing      Score  `bson:"writing" json:"writing_score"`
	Language     Score  `bson:"language" json:"language_score"`
}

// DerivedScore carries the reported sub-scores plus the predicted score
// computed once per ScoreRecord.
type DerivedScore struct {
	Writing   Score   `bson:"writing" json:"writing_score"`
	Language  Score   `bson:"language" json:"language_score"`
	Predicted float64 `bson:"predicted" json:"predicted_score"`
}

// ChoiceOption is the student's declared intent for the class.
type ChoiceOption string

const (
	OptionAttend ChoiceOption = "attend"
	OptionExempt ChoiceOption = "exempt"
)

// Valid reports whether the option is one of the known values.
func (o ChoiceOption) Valid() bool {
	return o == OptionAttend || o == OptionExempt
}

// EnrollmentRecord is uniquely keyed by (Token, Term). ChosenSection,
// ChosenOption and UpdatedAt are the only mutable fields; everything else is
// set-on-insert and never overwritten by later submissions with the same key.
type EnrollmentRecord struct {
	Student       StudentIdentity `bson:"student" json:"student"`
	ChosenSection string          `bson:"chosen_section" json:"chosen_section"`
	ChosenOption  ChoiceOption    `bson:"chosen_option" json:"chosen_option"`
	Token         string          `bson:"token" json:"token"`
	Term          string          `bson:"term" json:"term"`
	Scores        DerivedScore    `bson:"scores" json:"scores"`
	CreatedAt     time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `bson:"updated_at" json:"updated_at"`
}
