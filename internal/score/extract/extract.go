// Package extract pulls the exam validation token out of an uploaded score
// report.
package extract

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Both error kinds surface to the student as "extraction failed"; they stay
// distinct here so logs tell a corrupt upload apart from a valid document
// that simply carries no token.
var (
	ErrUnreadable    = errors.New("document could not be read")
	ErrTokenNotFound = errors.New("no validation token found in document")
)

// tokenPattern matches the first base64-like run ending in '==' padding.
var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9=/]+==`)

// FromText returns the first validation token in already-extracted document
// text.
func FromText(text string) (string, error) {
	match := tokenPattern.FindString(text)
	if match == "" {
		return "", ErrTokenNotFound
	}
	return match, nil
}

// FromPDF extracts plain text from every page in order and scans it for a
// token.
func FromPDF(r io.ReaderAt, size int64) (token string, err error) {
	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		text.WriteString(content)
	}

	return FromText(text.String())
}
