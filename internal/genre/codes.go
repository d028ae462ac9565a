// Package genre provides the catalog genre taxonomy and import eligibility rules.
package genre

import "strings"

// Horror is the numeric code for the horror genre (TMDB code scheme).
// It is the default eligibility gate for watch-history imports.
const Horror = 27

// codeNames maps numeric genre codes to display names (TMDB movie scheme).
var codeNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// nameCodes is the inverse lookup, keyed by slug so that catalog sources
// with differently-cased or punctuated names still resolve.
var nameCodes = func() map[string]int {
	m := make(map[string]int, len(codeNames))
	for code, name := range codeNames {
		m[Slugify(name)] = code
	}
	// Common shorthand seen in catalog exports.
	m["sci-fi"] = 878
	m["scifi"] = 878
	return m
}()

// Name returns the display name for a code, or empty when unknown.
func Name(code int) string {
	return codeNames[code]
}

// CodeForName resolves a genre name to its numeric code.
// Returns 0 when the name is not part of the taxonomy.
func CodeForName(name string) int {
	return nameCodes[Slugify(strings.TrimSpace(name))]
}
