package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	ledger := []WatchEntry{
		{MovieID: "mov-1", Rating: 4, RuntimeMinutes: 111},
		{MovieID: "mov-2", Rating: 2, RuntimeMinutes: 90},
		{MovieID: "mov-3", Rating: 3, RuntimeMinutes: 0},
	}

	stats := ComputeStats(ledger)

	assert.Equal(t, 3, stats.WatchedCount)
	assert.InDelta(t, 3.0, stats.AverageRating, 1e-9)
	assert.Equal(t, 201, stats.TotalMinutes)
}

func TestComputeStats_EmptyLedger(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, 0, stats.WatchedCount)
	assert.Zero(t, stats.AverageRating)
	assert.Zero(t, stats.TotalMinutes)
}

func TestUpsertWatch_AppendsNewEntry(t *testing.T) {
	u := &User{ID: "usr-1"}

	updated := u.UpsertWatch(WatchEntry{MovieID: "mov-1", Rating: 4})

	assert.False(t, updated)
	require.Len(t, u.Ledger, 1)
	assert.Equal(t, 4.0, u.Ledger[0].Rating)
}

func TestUpsertWatch_OverwritesExistingEntry(t *testing.T) {
	u := &User{ID: "usr-1"}
	u.UpsertWatch(WatchEntry{MovieID: "mov-1", Rating: 2, Review: "meh"})

	updated := u.UpsertWatch(WatchEntry{
		MovieID:   "mov-1",
		Rating:    5,
		Review:    "rewatched, incredible",
		WatchedAt: time.Now(),
	})

	assert.True(t, updated)
	require.Len(t, u.Ledger, 1, "upsert must never duplicate a movie")
	assert.Equal(t, 5.0, u.Ledger[0].Rating)
	assert.Equal(t, "rewatched, incredible", u.Ledger[0].Review)
}

func TestFindLedgerEntry(t *testing.T) {
	ledger := []WatchEntry{
		{MovieID: "mov-1", Rating: 3},
		{MovieID: "mov-2", Rating: 5},
	}

	entry := FindLedgerEntry(ledger, "mov-2")
	require.NotNil(t, entry)
	assert.Equal(t, 5.0, entry.Rating)

	assert.Nil(t, FindLedgerEntry(ledger, "mov-404"))
}

func TestMovie_ResolvedYear(t *testing.T) {
	assert.Equal(t, 1982, (&Movie{Year: 1982}).ResolvedYear())
	assert.Equal(t, 1996, (&Movie{ReleaseDate: "1996-12-20"}).ResolvedYear())
	assert.Equal(t, 1982, (&Movie{Year: 1982, ReleaseDate: "1996-12-20"}).ResolvedYear())
	assert.Zero(t, (&Movie{ReleaseDate: "unknown"}).ResolvedYear())
}
