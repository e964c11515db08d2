// Package normalize turns the loosely-structured upstream score payload into
// the typed record the rest of the system works with.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"enrolld/internal/enrollment/models"
)

// Payload is the upstream response, typed at the boundary. Every field is
// optional; the upstream omits whole sections for incomplete exams.
type Payload struct {
	Hash     string         `json:"hash"`
	Name     string         `json:"nome"`
	Essay    *EssayScore    `json:"redacao"`
	Subjects []SubjectScore `json:"provaObjetiva"`
}

// EssayScore is the essay sub-object.
type EssayScore struct {
	Score Decimal `json:"nota"`
}

// SubjectScore is one entry of the subject-score list, labeled by a free-text
// knowledge-area name.
type SubjectScore struct {
	Area  string  `json:"areaDeConhecimento"`
	Score Decimal `json:"nota"`
}

// Decimal is a numeric field the upstream serializes inconsistently: as a
// JSON number or as a string, sometimes with a comma decimal separator.
type Decimal struct {
	raw string
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		d.raw = n.String()
		return nil
	}
	d.raw = ""
	return nil
}

// Score parses the value, normalizing a comma separator to a period first.
// Absent or unparseable values come back as the unavailable marker.
func (d Decimal) Score() models.Score {
	raw := strings.TrimSpace(d.raw)
	if raw == "" {
		return models.Unavailable()
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return models.Unavailable()
	}
	return models.ValidScore(v)
}

// Formula holds the fixed linear prediction coefficients plus the label that
// identifies the languages subject.
type Formula struct {
	Base           float64
	Language       float64
	Writing        float64
	LanguagesLabel string
}

// Relevant extracts the essay and languages sub-scores and computes the
// predicted score, rounded to 2 decimals, treating missing components as 0.
// It never fails: anything it cannot extract degrades to the unavailable
// marker.
func Relevant(p *Payload, f Formula) models.DerivedScore {
	writing := models.Unavailable()
	language := models.Unavailable()

	if p != nil {
		if p.Essay != nil {
			writing = p.Essay.Score.Score()
		}
		for _, subject := range p.Subjects {
			// Case-sensitive on purpose: the upstream label is stable
			// and a relaxed match could pick up a different subject.
			if strings.Contains(subject.Area, f.LanguagesLabel) {
				language = subject.Score.Score()
				break
			}
		}
	}

	predicted := f.Base + f.Language*language.OrZero() + f.Writing*writing.OrZero()

	return models.DerivedScore{
		Writing:   writing,
		Language:  language,
		Predicted: math.Round(predicted*100) / 100,
	}
}
