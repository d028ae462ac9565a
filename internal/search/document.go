// Package search provides full-text catalog search using Bleve. It backs the
// import review flow: rows the reconciler could not match are resolved by
// hand against this index.
package search

import (
	"github.com/watchvaultapp/watchvault-server/internal/domain"
	"github.com/watchvaultapp/watchvault-server/internal/genre"
)

// MovieDocument is the indexed representation of a catalog entry.
type MovieDocument struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Overview       string   `json:"overview,omitempty"`
	GenreSlugs     []string `json:"genre_slugs,omitempty"`
	Year           int      `json:"year,omitempty"`
	RuntimeMinutes int      `json:"runtime_minutes,omitempty"`
}

// FromMovie builds the search document for a catalog entry. Genre slugs are
// derived from codes first, names second, matching the eligibility gate's
// precedence.
func FromMovie(movie *domain.Movie) *MovieDocument {
	doc := &MovieDocument{
		ID:             movie.ID,
		Title:          movie.Title,
		Overview:       movie.Overview,
		Year:           movie.ResolvedYear(),
		RuntimeMinutes: movie.RuntimeMinutes,
	}

	if len(movie.GenreCodes) > 0 {
		for _, code := range movie.GenreCodes {
			if name := genre.Name(code); name != "" {
				doc.GenreSlugs = append(doc.GenreSlugs, genre.Slugify(name))
			}
		}
	} else {
		for _, name := range movie.GenreNames {
			doc.GenreSlugs = append(doc.GenreSlugs, genre.Slugify(name))
		}
	}

	return doc
}

// ToMap converts the document to a map with lowercase field names so they
// line up with the index mapping.
func (d *MovieDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":    d.ID,
		"title": d.Title,
	}

	if d.Overview != "" {
		m["overview"] = d.Overview
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	if d.RuntimeMinutes > 0 {
		m["runtime_minutes"] = d.RuntimeMinutes
	}

	return m
}
