package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
	"github.com/watchvaultapp/watchvault-server/internal/normalize"
	"github.com/watchvaultapp/watchvault-server/internal/store"
)

// rankFloor is the similarity below which a candidate is not considered a
// title match at all, before the acceptance threshold is applied.
// Kept loose so that wildly-short names still reach the length-ratio guard
// and get the more specific rejection reason.
const rankFloor = 0.1

// Catalog is the read-only lookup surface the matcher needs. Satisfied by
// both the badger store and the in-memory Cache.
type Catalog interface {
	FindExact(ctx context.Context, title string, year int) (*domain.Movie, error)
	FindInYearWindow(ctx context.Context, year, tolerance, limit int) ([]*domain.Movie, error)
}

// MatcherOptions tunes the acceptance thresholds. Zero values fall back to
// the defaults the source data was calibrated against.
type MatcherOptions struct {
	MinScore       float64 // minimum similarity to accept a fuzzy match
	LengthRatio    float64 // minimum short/long title length ratio
	YearTolerance  int     // candidate window half-width in years
	CandidateLimit int     // cap on candidates fetched per window
}

func (o MatcherOptions) withDefaults() MatcherOptions {
	if o.MinScore == 0 {
		o.MinScore = 0.92
	}
	if o.LengthRatio == 0 {
		o.LengthRatio = 0.5
	}
	if o.YearTolerance == 0 {
		o.YearTolerance = 3
	}
	if o.CandidateLimit == 0 {
		o.CandidateLimit = 2000
	}
	return o
}

// Matcher finds the catalog entry corresponding to an external record.
// Thresholds are strict on purpose: an unmatched record is reviewable by the
// importing user, a silently wrong match is not.
type Matcher struct {
	catalog Catalog
	opts    MatcherOptions
	logger  *slog.Logger
}

// NewMatcher creates a matcher over the given catalog.
func NewMatcher(catalog Catalog, logger *slog.Logger, opts MatcherOptions) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		catalog: catalog,
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

// Match resolves a record name and year to a single catalog entry, or a
// typed not-found outcome. Stages run in order and short-circuit:
//
//  1. Exact: normalized title plus exact year, score 1.0. The only path that
//     bypasses fuzzy scoring.
//  2. Year window: candidates within the configured tolerance; an empty
//     window rejects immediately rather than scanning the whole catalog.
//  3. Similarity ranking over the window, best candidate wins.
//  4. Length-ratio guard: a short name must not absorb an unrelated longer
//     title ("It" vs "It Chapter Two"), regardless of score.
//  5. Threshold: a candidate scoring exactly MinScore is accepted.
func (m *Matcher) Match(ctx context.Context, name string, year int) (MatchOutcome, error) {
	stripped := normalize.Title(name)
	normName := normalize.ForComparison(stripped)

	movie, err := m.catalog.FindExact(ctx, stripped, year)
	if err == nil {
		return MatchOutcome{Found: true, Movie: movie, Score: 1.0}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return MatchOutcome{}, fmt.Errorf("exact lookup: %w", err)
	}

	candidates, err := m.catalog.FindInYearWindow(ctx, year, m.opts.YearTolerance, m.opts.CandidateLimit)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("candidate window: %w", err)
	}
	if len(candidates) == 0 {
		return MatchOutcome{Reason: ReasonNoCandidates}, nil
	}

	best, bestScore := rankCandidates(normName, candidates)
	if best == nil {
		return MatchOutcome{Reason: ReasonNoTitleMatch}, nil
	}

	bestNorm := normalize.ForComparison(best.Title)
	if lengthRatio(normName, bestNorm) < m.opts.LengthRatio {
		m.logger.Debug("rejected by length-ratio guard",
			"name", name,
			"candidate", best.Title,
			"score", bestScore,
		)
		return MatchOutcome{Reason: ReasonLengthMismatch}, nil
	}

	if bestScore < m.opts.MinScore {
		return MatchOutcome{Reason: ReasonBelowThreshold}, nil
	}

	return MatchOutcome{Found: true, Movie: best, Score: bestScore}, nil
}

// rankCandidates returns the best-scoring candidate above the ranking floor.
func rankCandidates(normName string, candidates []*domain.Movie) (*domain.Movie, float64) {
	var best *domain.Movie
	bestScore := 0.0

	for _, candidate := range candidates {
		score := stringSimilarity(normName, normalize.ForComparison(candidate.Title))
		if score < rankFloor {
			continue
		}
		if best == nil || score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	return best, bestScore
}

// lengthRatio computes min(len)/max(len) for two strings.
func lengthRatio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return float64(min(len(a), len(b))) / float64(max(len(a), len(b)))
}

// stringSimilarity calculates the similarity between two strings (0.0-1.0)
// as 1 - editDistance/maxLen.
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(a, b)
	maxLen := max(len(a), len(b))

	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
