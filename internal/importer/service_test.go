package importer

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
	"github.com/watchvaultapp/watchvault-server/internal/errors"
	"github.com/watchvaultapp/watchvault-server/internal/genre"
	"github.com/watchvaultapp/watchvault-server/internal/store"
)

type serviceFixture struct {
	store   *store.Store
	service *Service
}

func newServiceFixture(t *testing.T, movies []*domain.Movie) *serviceFixture {
	t.Helper()
	ctx := context.Background()

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	for _, movie := range movies {
		require.NoError(t, s.CreateMovie(ctx, movie))
	}
	require.NoError(t, s.CreateUser(ctx, &domain.User{ID: "usr-1", Email: "test@example.com"}))

	cache := NewCache(s, nil)
	matcher := NewMatcher(cache, nil, MatcherOptions{})
	classifier := genre.NewClassifier(genre.Horror, nil)

	return &serviceFixture{
		store:   s,
		service: NewService(s, cache, matcher, classifier, nil, 4),
	}
}

func horrorCatalog() []*domain.Movie {
	return []*domain.Movie{
		{ID: "mov-scream", Title: "Scream", Year: 1996, GenreCodes: []int{27}, RuntimeMinutes: 111},
		{ID: "mov-halloween", Title: "Halloween", Year: 1978, GenreCodes: []int{27}, RuntimeMinutes: 91},
		{ID: "mov-alien", Title: "Alien", Year: 1979, GenreCodes: []int{27, 878}, RuntimeMinutes: 117},
	}
}

func TestPreview_FoundAndNotFound(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())
	ctx := context.Background()

	result, err := f.service.Preview(ctx, "usr-1", []ExternalRecord{
		{Name: "Scream", Year: 1996, Rating: 4},
		{Name: "NotARealMovie", Year: 1999, Rating: 2},
	})
	require.NoError(t, err)

	require.Len(t, result.Found, 1)
	assert.Equal(t, "Scream", result.Found[0].Name)
	assert.Equal(t, "mov-scream", result.Found[0].CatalogID)
	assert.Equal(t, StatusNew, result.Found[0].Status)
	assert.Equal(t, 4.0, result.Found[0].Rating)
	assert.Equal(t, 111, result.Found[0].RuntimeMinutes)

	require.Len(t, result.NotFound, 1)
	assert.Equal(t, "NotARealMovie", result.NotFound[0].Name)
	assert.Equal(t, NotFoundNotInCatalog, result.NotFound[0].Reason)

	assert.Equal(t, PreviewSummary{Total: 2, Found: 1, NotFound: 1}, result.Summary)
}

func TestPreview_UpdateStatusCarriesOldRating(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())
	ctx := context.Background()

	_, err := f.service.Confirm(ctx, "usr-1", []ApprovedItem{
		{CatalogID: "mov-scream", Title: "Scream", Rating: 3, RuntimeMinutes: 111},
	})
	require.NoError(t, err)

	result, err := f.service.Preview(ctx, "usr-1", []ExternalRecord{
		{Name: "Scream", Year: 1996, Rating: 5},
	})
	require.NoError(t, err)

	require.Len(t, result.Found, 1)
	assert.Equal(t, StatusUpdate, result.Found[0].Status)
	require.NotNil(t, result.Found[0].OldRating)
	assert.Equal(t, 3.0, *result.Found[0].OldRating)
}

func TestPreview_GenreGateFailsClosed(t *testing.T) {
	f := newServiceFixture(t, []*domain.Movie{
		{ID: "mov-drama", Title: "Marriage Story", Year: 2019, GenreCodes: []int{18}},
		{ID: "mov-bare", Title: "Mystery Record", Year: 2019},
	})
	ctx := context.Background()

	result, err := f.service.Preview(ctx, "usr-1", []ExternalRecord{
		{Name: "Marriage Story", Year: 2019},
		{Name: "Mystery Record", Year: 2019},
	})
	require.NoError(t, err)

	require.Len(t, result.NotFound, 2)
	for _, item := range result.NotFound {
		assert.Equal(t, NotFoundNotEligible, item.Reason)
	}
}

func TestPreview_PreservesInputOrder(t *testing.T) {
	var movies []*domain.Movie
	var records []ExternalRecord
	for i := range 20 {
		title := fmt.Sprintf("ordered film number %02d", i)
		movies = append(movies, &domain.Movie{
			ID:         fmt.Sprintf("mov-%02d", i),
			Title:      title,
			Year:       2000,
			GenreCodes: []int{27},
		})
		records = append(records, ExternalRecord{Name: title, Year: 2000})
	}
	f := newServiceFixture(t, movies)

	result, err := f.service.Preview(context.Background(), "usr-1", records)
	require.NoError(t, err)
	require.Len(t, result.Found, 20)
	for i, item := range result.Found {
		assert.Equal(t, fmt.Sprintf("mov-%02d", i), item.CatalogID)
	}
}

func TestPreview_IsPure(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())
	ctx := context.Background()

	records := []ExternalRecord{
		{Name: "Scream", Year: 1996, Rating: 4},
		{Name: "NotARealMovie", Year: 1999},
	}

	first, err := f.service.Preview(ctx, "usr-1", records)
	require.NoError(t, err)
	second, err := f.service.Preview(ctx, "usr-1", records)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	user, err := f.store.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Empty(t, user.Ledger)
	assert.Equal(t, domain.WatchStats{}, user.Stats)
}

func TestPreview_EmptyBatch(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())

	_, err := f.service.Preview(context.Background(), "usr-1", nil)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestPreview_UnknownUser(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())

	_, err := f.service.Preview(context.Background(), "usr-ghost", []ExternalRecord{
		{Name: "Scream", Year: 1996},
	})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestConfirm_ImportsAndComputesStats(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())
	ctx := context.Background()

	result, err := f.service.Confirm(ctx, "usr-1", []ApprovedItem{
		{CatalogID: "mov-scream", Title: "Scream", Rating: 4, RuntimeMinutes: 111},
		{CatalogID: "mov-halloween", Title: "Halloween", Rating: 5, RuntimeMinutes: 91},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 0, result.UpdatedCount)
	assert.Equal(t, 2, result.Stats.WatchedCount)
	assert.InDelta(t, 4.5, result.Stats.AverageRating, 1e-9)
	assert.Equal(t, 202, result.Stats.TotalMinutes)
}

func TestConfirm_IdempotentUpsert(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())
	ctx := context.Background()

	_, err := f.service.Confirm(ctx, "usr-1", []ApprovedItem{
		{CatalogID: "mov-scream", Title: "Scream", Rating: 3, Review: "first pass", RuntimeMinutes: 111},
	})
	require.NoError(t, err)

	result, err := f.service.Confirm(ctx, "usr-1", []ApprovedItem{
		{CatalogID: "mov-scream", Title: "Scream", Rating: 5, Review: "rewatch", RuntimeMinutes: 111},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ImportedCount)
	assert.Equal(t, 1, result.UpdatedCount)

	user, err := f.store.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, user.Ledger, 1)
	assert.Equal(t, 5.0, user.Ledger[0].Rating)
	assert.Equal(t, "rewatch", user.Ledger[0].Review)
	assert.Equal(t, 1, user.Stats.WatchedCount)
	assert.Equal(t, 5.0, user.Stats.AverageRating)
}

func TestConfirm_StatsCoverFullLedger(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())
	ctx := context.Background()

	_, err := f.service.Confirm(ctx, "usr-1", []ApprovedItem{
		{CatalogID: "mov-scream", Title: "Scream", Rating: 2, RuntimeMinutes: 111},
	})
	require.NoError(t, err)

	// Stats after the second batch cover the whole ledger, not just the
	// newly imported subset.
	result, err := f.service.Confirm(ctx, "usr-1", []ApprovedItem{
		{CatalogID: "mov-halloween", Title: "Halloween", Rating: 4, RuntimeMinutes: 91},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.WatchedCount)
	assert.InDelta(t, 3.0, result.Stats.AverageRating, 1e-9)
	assert.Equal(t, 202, result.Stats.TotalMinutes)
}

func TestConfirm_ConcurrentConfirmsKeepAllEntries(t *testing.T) {
	var movies []*domain.Movie
	for i := range 8 {
		movies = append(movies, &domain.Movie{
			ID:             fmt.Sprintf("mov-par-%d", i),
			Title:          fmt.Sprintf("parallel film %d", i),
			Year:           2001,
			GenreCodes:     []int{27},
			RuntimeMinutes: 100,
		})
	}
	f := newServiceFixture(t, movies)
	ctx := context.Background()

	// Each goroutine commits a distinct movie for the same user. Without
	// per-user serialization the load-upsert-save sequences interleave and
	// later saves clobber earlier entries.
	var wg sync.WaitGroup
	errs := make([]error, len(movies))
	for i, movie := range movies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.service.Confirm(ctx, "usr-1", []ApprovedItem{
				{CatalogID: movie.ID, Title: movie.Title, Rating: 4, RuntimeMinutes: movie.RuntimeMinutes},
			})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	user, err := f.store.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Len(t, user.Ledger, len(movies))
	assert.Equal(t, len(movies), user.Stats.WatchedCount)
	assert.Equal(t, len(movies)*100, user.Stats.TotalMinutes)
}

func TestPreview_CanceledContext(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Preview(ctx, "usr-1", []ExternalRecord{
		{Name: "Scream", Year: 1996},
		{Name: "Halloween", Year: 1978},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// faultySaveStore fails every save while delegating reads to the real store.
type faultySaveStore struct {
	*store.Store
}

func (f *faultySaveStore) SaveUser(context.Context, *domain.User) error {
	return fmt.Errorf("disk full")
}

func TestConfirm_SaveFaultLeavesLedgerUntouched(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())
	ctx := context.Background()

	cache := NewCache(f.store, nil)
	matcher := NewMatcher(cache, nil, MatcherOptions{})
	classifier := genre.NewClassifier(genre.Horror, nil)
	svc := NewService(&faultySaveStore{Store: f.store}, cache, matcher, classifier, nil, 4)

	_, err := svc.Confirm(ctx, "usr-1", []ApprovedItem{
		{CatalogID: "mov-scream", Title: "Scream", Rating: 4, RuntimeMinutes: 111},
		{CatalogID: "mov-halloween", Title: "Halloween", Rating: 5, RuntimeMinutes: 91},
	})
	require.ErrorContains(t, err, "persist ledger")

	// The commit is all-or-nothing: nothing from the failed batch landed.
	user, err := f.store.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Empty(t, user.Ledger)
	assert.Equal(t, domain.WatchStats{}, user.Stats)
}

func TestConfirm_EmptyItems(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())

	_, err := f.service.Confirm(context.Background(), "usr-1", nil)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestConfirm_UnknownUser(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())

	_, err := f.service.Confirm(context.Background(), "usr-ghost", []ApprovedItem{
		{CatalogID: "mov-scream", Title: "Scream", Rating: 4},
	})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestRate_SingleEntry(t *testing.T) {
	f := newServiceFixture(t, horrorCatalog())
	ctx := context.Background()

	result, err := f.service.Rate(ctx, "usr-1", "mov-alien", 5, "still holds up")
	require.NoError(t, err)

	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 1, result.Stats.WatchedCount)
	assert.Equal(t, 117, result.Stats.TotalMinutes)

	_, err = f.service.Rate(ctx, "usr-1", "mov-ghost", 5, "")
	assert.ErrorIs(t, err, store.ErrMovieNotFound)
}
