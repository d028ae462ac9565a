package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
)

func TestCreateAndGetMovie(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	movie := &domain.Movie{
		ID:         "mov-1",
		Title:      "The Shining",
		Year:       1980,
		GenreCodes: []int{27},
	}
	require.NoError(t, s.CreateMovie(ctx, movie))

	got, err := s.GetMovie(ctx, "mov-1")
	require.NoError(t, err)
	assert.Equal(t, "The Shining", got.Title)
	assert.Equal(t, 1980, got.Year)
}

func TestGetMovie_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMovie(context.Background(), "mov-missing")
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestCreateMovie_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateMovie(ctx, &domain.Movie{ID: "mov-1", Title: "Halloween", Year: 1978}))

	err := s.CreateMovie(ctx, &domain.Movie{ID: "mov-1", Title: "Halloween", Year: 1978})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateMovie_TitleCollisionIsLogged(t *testing.T) {
	var logs bytes.Buffer
	s, err := New(t.TempDir(), slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	require.NoError(t, s.CreateMovie(ctx, &domain.Movie{ID: "mov-1", Title: "The Thing", Year: 1982}))
	require.NoError(t, s.CreateMovie(ctx, &domain.Movie{ID: "mov-2", Title: "Thing!", Year: 1982}))

	// Both documents exist; the exact-lookup index resolves to the newest.
	got, err := s.FindExact(ctx, "The Thing", 1982)
	require.NoError(t, err)
	assert.Equal(t, "mov-2", got.ID)

	assert.Contains(t, logs.String(), "title collision")
	assert.Contains(t, logs.String(), "mov-1")
	assert.Contains(t, logs.String(), "mov-2")
}

func TestFindExact_NormalizesTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateMovie(ctx, &domain.Movie{ID: "mov-1", Title: "The Exorcist", Year: 1973}))

	// Case, punctuation and a leading article all normalize away.
	got, err := s.FindExact(ctx, "exorcist!", 1973)
	require.NoError(t, err)
	assert.Equal(t, "mov-1", got.ID)

	_, err = s.FindExact(ctx, "The Exorcist", 1974)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestFindExact_UsesReleaseDateYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateMovie(ctx, &domain.Movie{
		ID:          "mov-1",
		Title:       "Hereditary",
		ReleaseDate: "2018-06-08",
	}))

	got, err := s.FindExact(ctx, "Hereditary", 2018)
	require.NoError(t, err)
	assert.Equal(t, "mov-1", got.ID)
}

func TestFindInYearWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	years := []int{1995, 1996, 1997, 1999, 2001}
	for i, y := range years {
		movie := &domain.Movie{
			ID:    fmt.Sprintf("mov-%d", i),
			Title: fmt.Sprintf("Movie %d", i),
			Year:  y,
		}
		require.NoError(t, s.CreateMovie(ctx, movie))
	}

	// Window [1994, 2000] inclusive: picks up 1995, 1996, 1997 and 1999.
	movies, err := s.FindInYearWindow(ctx, 1997, 3, 100)
	require.NoError(t, err)
	require.Len(t, movies, 4)
	for _, m := range movies {
		assert.GreaterOrEqual(t, m.Year, 1994)
		assert.LessOrEqual(t, m.Year, 2000)
	}
}

func TestFindInYearWindow_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := range 10 {
		movie := &domain.Movie{
			ID:    fmt.Sprintf("mov-%d", i),
			Title: fmt.Sprintf("Movie %d", i),
			Year:  1990,
		}
		require.NoError(t, s.CreateMovie(ctx, movie))
	}

	movies, err := s.FindInYearWindow(ctx, 1990, 0, 5)
	require.NoError(t, err)
	assert.Len(t, movies, 5)
}

func TestFindInYearWindow_MissingYearExcluded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateMovie(ctx, &domain.Movie{ID: "mov-1", Title: "Undated"}))
	require.NoError(t, s.CreateMovie(ctx, &domain.Movie{ID: "mov-2", Title: "Dated", Year: 2000}))

	movies, err := s.FindInYearWindow(ctx, 2000, 3, 100)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "mov-2", movies[0].ID)
}

func TestListAllMoviesAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := range 3 {
		movie := &domain.Movie{
			ID:    fmt.Sprintf("mov-%d", i),
			Title: fmt.Sprintf("Movie %d", i),
			Year:  2000 + i,
		}
		require.NoError(t, s.CreateMovie(ctx, movie))
	}

	movies, err := s.ListAllMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, 3)

	count, err := s.CountMovies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
