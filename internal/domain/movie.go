package domain

import (
	"time"

	"github.com/watchvaultapp/watchvault-server/internal/normalize"
)

// Movie is a canonical catalog entry. The catalog is authoritative and
// read-only from the importer's perspective; entries are only created by
// seeding or catalog maintenance tooling.
type Movie struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Year is the structured release year. Some catalog sources only ship a
	// free-text ReleaseDate; ResolvedYear falls back to its leading digits.
	Year        int    `json:"year,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`

	// Genre is carried in one or both representations depending on the
	// catalog source: numeric codes (TMDB scheme) and/or plain names.
	GenreCodes []int    `json:"genre_codes,omitempty"`
	GenreNames []string `json:"genre_names,omitempty"`

	RuntimeMinutes int    `json:"runtime_minutes,omitempty"`
	Overview       string `json:"overview,omitempty"`
	PosterURL      string `json:"poster_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResolvedYear returns the structured year, or the leading 4 digits of the
// free-text release date when the structured field is missing.
func (m *Movie) ResolvedYear() int {
	if m.Year != 0 {
		return m.Year
	}
	return normalize.YearFromDate(m.ReleaseDate)
}
