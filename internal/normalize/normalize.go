// Package normalize provides title normalization for catalog matching.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// trailingYear matches a decorative year annotation at the end of a title,
// e.g. "Scream (1996)". History exports commonly append these.
var trailingYear = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)

// Title strips a trailing parenthesized 4-digit year annotation and
// surrounding whitespace. Pure and total; any string is a valid input.
//
//	"Scream (1996)"  -> "Scream"
//	"  Halloween  "  -> "Halloween"
func Title(raw string) string {
	return strings.TrimSpace(trailingYear.ReplaceAllString(raw, ""))
}

// ForComparison normalizes a title for similarity comparison.
// Lowercases, removes leading articles and punctuation, collapses whitespace.
func ForComparison(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Remove leading articles.
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, article) {
			s = s[len(article):]
			break
		}
	}

	// Remove punctuation.
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}

	// Collapse multiple spaces.
	return strings.Join(strings.Fields(result.String()), " ")
}

// YearFromDate extracts the leading 4-digit year from a free-text date
// ("1996-12-20" -> 1996). Returns 0 when the prefix is not a year.
func YearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}
