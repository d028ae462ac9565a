package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func seedIndex(t *testing.T, idx *Index) {
	t.Helper()
	require.NoError(t, idx.IndexMovies([]*domain.Movie{
		{ID: "mov-scream", Title: "Scream", Year: 1996, GenreCodes: []int{27}, RuntimeMinutes: 111},
		{ID: "mov-scream2", Title: "Scream 2", Year: 1997, GenreCodes: []int{27}, RuntimeMinutes: 120},
		{ID: "mov-heat", Title: "Heat", Year: 1995, GenreNames: []string{"Crime"}, RuntimeMinutes: 170},
	}))
}

func TestSearch_ByTitle(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{Query: "scream", Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, result.Total)
	assert.Equal(t, "Scream", result.Hits[0].Title)
	assert.Equal(t, 1996, result.Hits[0].Year)
}

func TestSearch_FuzzyTitle(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{Query: "screm", Limit: 10})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Total, uint64(1))
}

func TestSearch_GenreFilter(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{GenreSlug: "horror", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Total)

	result, err = idx.Search(context.Background(), Params{GenreSlug: "crime", Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Total)
	assert.Equal(t, "mov-heat", result.Hits[0].ID)
}

func TestSearch_YearRange(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{MinYear: 1996, MaxYear: 1997, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Total)

	result, err = idx.Search(context.Background(), Params{MinYear: 1998, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Total)
}

func TestIndex_DeleteAndCount(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	require.NoError(t, idx.DeleteMovie("mov-heat"))

	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestFromMovie_GenreSlugPrecedence(t *testing.T) {
	// Codes win over names when both are present.
	doc := FromMovie(&domain.Movie{
		ID:         "mov-1",
		Title:      "Alien",
		GenreCodes: []int{27},
		GenreNames: []string{"Science Fiction"},
	})
	assert.Equal(t, []string{"horror"}, doc.GenreSlugs)

	doc = FromMovie(&domain.Movie{
		ID:         "mov-2",
		Title:      "Alien",
		GenreNames: []string{"Science Fiction"},
	})
	assert.Equal(t, []string{"science-fiction"}, doc.GenreSlugs)
}
