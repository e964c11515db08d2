// Package receipt renders the enrollment confirmation PDF handed to the
// student at the end of the wizard.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"enrolld/internal/enrollment/models"
)

// Data is everything the receipt shows. Timestamps arrive pre-formatted so
// the composer stays free of locale decisions.
type Data struct {
	Created   bool
	Record    models.EnrollmentRecord
	UpdatedAt string
}

// Filename is the deterministic download name for a student's receipt.
func Filename(registrationNumber string) string {
	return fmt.Sprintf("receipt_%s.pdf", registrationNumber)
}

const (
	labelWidth = 60
	rowHeight  = 8
)

// Compose renders a single-page A4 receipt and returns the PDF bytes.
func Compose(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Enrollment Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "Enrollment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	status := "Enrollment updated"
	if d.Created {
		status = "Enrollment confirmed"
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, rowHeight, status, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	rec := d.Record
	rows := []struct {
		label string
		value string
	}{
		{"Full Name", rec.Student.FullName},
		{"Registration Number", rec.Student.RegistrationNumber},
		{"Course", rec.Student.CourseName},
		{"Term", rec.Term},
		{"Chosen Section", rec.ChosenSection},
		{"Chosen Option", string(rec.ChosenOption)},
		{"Writing Score", rec.Scores.Writing.String()},
		{"Language Score", rec.Scores.Language.String()},
		{"Predicted Score", fmt.Sprintf("%.2f", rec.Scores.Predicted)},
		{"Validation Token", rec.Token},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(labelWidth, rowHeight, row.label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, rowHeight, row.value, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Last updated at: %s", d.UpdatedAt), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "This document was generated automatically and is valid without signature.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
