package domain

import "time"

// User is an account with its personal watch ledger.
//
// The user document is the unit of persistence: ledger and stats are stored
// inline so a commit is a single atomic write.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`

	// Ledger holds at most one entry per movie; see User.UpsertWatch.
	Ledger []WatchEntry `json:"ledger"`

	// Stats is derived from Ledger via ComputeStats and never updated
	// incrementally. It is stored only as a display cache.
	Stats WatchStats `json:"stats"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertWatch merges an entry into the ledger keyed by movie ID.
// An existing entry for the same movie is overwritten in place (rating,
// review, runtime) with a refreshed timestamp; otherwise the entry is
// appended. Returns true when an existing entry was updated.
//
// Every mutation of the ledger must go through here to preserve the
// one-entry-per-movie invariant.
func (u *User) UpsertWatch(entry WatchEntry) (updated bool) {
	for i := range u.Ledger {
		if u.Ledger[i].MovieID == entry.MovieID {
			u.Ledger[i] = entry
			return true
		}
	}
	u.Ledger = append(u.Ledger, entry)
	return false
}

// RefreshStats recomputes the stats cache from the full ledger.
func (u *User) RefreshStats() {
	u.Stats = ComputeStats(u.Ledger)
}
