package domain

import "time"

// WatchEntry is one user's record for one catalog movie: at most one entry
// exists per (user, movie) pair.
type WatchEntry struct {
	MovieID        string    `json:"movie_id"`
	Title          string    `json:"title"`
	Rating         float64   `json:"rating"`
	Review         string    `json:"review,omitempty"`
	RuntimeMinutes int       `json:"runtime_minutes,omitempty"`
	WatchedAt      time.Time `json:"watched_at"`
}

// WatchStats are aggregate numbers over a user's full ledger.
type WatchStats struct {
	WatchedCount  int     `json:"watched_count"`
	AverageRating float64 `json:"average_rating"`
	TotalMinutes  int     `json:"total_minutes"`
}

// ComputeStats derives stats from a complete ledger. This is the single
// definition of the aggregates; callers recompute rather than adjusting
// stored values so the numbers can never drift from the ledger.
func ComputeStats(ledger []WatchEntry) WatchStats {
	stats := WatchStats{WatchedCount: len(ledger)}
	if len(ledger) == 0 {
		return stats
	}

	var ratingSum float64
	for _, entry := range ledger {
		ratingSum += entry.Rating
		stats.TotalMinutes += entry.RuntimeMinutes
	}
	stats.AverageRating = ratingSum / float64(len(ledger))
	return stats
}

// FindLedgerEntry returns the ledger entry for a movie, or nil when the user
// has not logged it. Ledgers are user-scale, so a linear scan is fine.
func FindLedgerEntry(ledger []WatchEntry, movieID string) *WatchEntry {
	for i := range ledger {
		if ledger[i].MovieID == movieID {
			return &ledger[i]
		}
	}
	return nil
}
