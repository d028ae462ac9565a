// Package importer reconciles externally-sourced watch history against the
// movie catalog and commits caller-approved results into user ledgers. The
// workflow has two phases: Preview classifies every record without writing
// anything, Confirm merges an approved subset into the ledger atomically.
package importer

import (
	"github.com/watchvaultapp/watchvault-server/internal/domain"
)

// ExternalRecord is one row of an imported watch-history batch, e.g. a line
// from a Letterboxd or IMDb CSV export.
type ExternalRecord struct {
	Name        string  `json:"name" validate:"required"`
	Year        int     `json:"year" validate:"required,gt=1880,lt=2200"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	Review      string  `json:"review,omitempty"`
	WatchedDate string  `json:"watched_date,omitempty"`
}

// Match failure reasons, surfaced as PreviewItem detail.
const (
	ReasonNoCandidates   = "no candidates in year range"
	ReasonNoTitleMatch   = "no title match"
	ReasonLengthMismatch = "title length mismatch"
	ReasonBelowThreshold = "score below threshold"
)

// MatchOutcome is the result of matching one record against the catalog.
// Found carries the matched movie and a similarity score in [0,1]; not-found
// carries a reason instead.
type MatchOutcome struct {
	Found  bool
	Movie  *domain.Movie
	Score  float64
	Reason string
}

// Preview item statuses and not-found reasons.
const (
	StatusNew    = "new"
	StatusUpdate = "update"

	NotFoundNotInCatalog = "not_in_catalog"
	NotFoundNotEligible  = "not_eligible_genre"
)

// PreviewItem is one classified row of a preview. Found rows carry a catalog
// reference and a new/update status; not-found rows carry a reason and a
// matcher detail explaining which stage rejected the record.
type PreviewItem struct {
	Name           string   `json:"name"`
	Year           int      `json:"year"`
	CatalogID      string   `json:"catalog_id,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	Review         string   `json:"review,omitempty"`
	RuntimeMinutes int      `json:"runtime_minutes,omitempty"`
	Score          float64  `json:"score,omitempty"`
	Status         string   `json:"status,omitempty"`
	OldRating      *float64 `json:"old_rating,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Detail         string   `json:"detail,omitempty"`
}

// PreviewSummary counts one preview batch. Found+NotFound always equals Total.
type PreviewSummary struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
}

// PreviewResult is the complete, reviewable breakdown of one preview call.
type PreviewResult struct {
	Found    []PreviewItem  `json:"found"`
	NotFound []PreviewItem  `json:"not_found"`
	Summary  PreviewSummary `json:"summary"`
}

// ApprovedItem is one caller-curated row from a prior preview's found set.
// Ratings, reviews and runtime may have been edited by the caller.
type ApprovedItem struct {
	CatalogID      string  `json:"catalog_id" validate:"required"`
	Title          string  `json:"title" validate:"required"`
	Rating         float64 `json:"rating" validate:"gte=0,lte=5"`
	Review         string  `json:"review,omitempty"`
	RuntimeMinutes int     `json:"runtime_minutes"`
}

// ConfirmResult reports what a commit changed, with stats recomputed from the
// full post-commit ledger.
type ConfirmResult struct {
	ImportedCount int               `json:"imported_count"`
	UpdatedCount  int               `json:"updated_count"`
	Stats         domain.WatchStats `json:"stats"`
}
