// Package names cross-checks the name a student enrolled under against the
// name on the exam record.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Match reports whether two free-text names identify the same person after
// stripping diacritics, case and whitespace. Pure function; the only failure
// mode is returning false.
func Match(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Normalize decomposes to NFKD, removes combining marks, lowercases and drops
// all whitespace.
func Normalize(name string) string {
	stripped, _, err := transform.String(stripMarks, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), "")
}
