package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
	"github.com/watchvaultapp/watchvault-server/internal/errors"
	"github.com/watchvaultapp/watchvault-server/internal/genre"
	"github.com/watchvaultapp/watchvault-server/internal/normalize"
)

// Warmer is the catalog warm-up hook the orchestrator invokes once per
// preview batch, before the first record is matched. Must be idempotent.
type Warmer interface {
	Initialize(ctx context.Context) error
}

// UserStore is the persistence surface the orchestrator needs. Kept narrow
// so tests can stand in a faulty implementation for the commit path.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	SaveUser(ctx context.Context, user *domain.User) error
	GetMovie(ctx context.Context, id string) (*domain.Movie, error)
}

// Service drives the two-phase import workflow. Preview never writes;
// Confirm performs exactly one atomic save per call.
type Service struct {
	store      UserStore
	warmer     Warmer
	matcher    *Matcher
	classifier *genre.Classifier
	logger     *slog.Logger
	workers    int

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewService creates the import orchestrator. workers bounds how many
// records are matched concurrently within one preview batch.
func NewService(s UserStore, warmer Warmer, matcher *Matcher, classifier *genre.Classifier, logger *slog.Logger, workers int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Service{
		store:      s,
		warmer:     warmer,
		matcher:    matcher,
		classifier: classifier,
		logger:     logger,
		workers:    workers,
		userLocks:  make(map[string]*sync.Mutex),
	}
}

// recordOutcome pairs a classified preview row with its position so the
// result assembly can preserve input order.
type recordOutcome struct {
	item  PreviewItem
	found bool
	err   error
}

// Preview classifies a batch of external records against the catalog and the
// user's ledger. Read-only: calling it repeatedly with the same input yields
// the same result and leaves the ledger untouched. Records are matched
// concurrently but results come back in input order.
func (s *Service) Preview(ctx context.Context, userID string, records []ExternalRecord) (*PreviewResult, error) {
	if len(records) == 0 {
		return nil, errors.Validation("no records to preview")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.warmer != nil {
		if err := s.warmer.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("catalog warm-up: %w", err)
		}
	}

	start := time.Now()
	outcomes := make([]recordOutcome, len(records))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(s.workers, len(records)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.classifyRecord(ctx, user, records[i])
			}
		}()
	}

feed:
	for i := range records {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, outcome := range outcomes {
		if outcome.err != nil {
			return nil, outcome.err
		}
	}

	result := &PreviewResult{
		Found:    []PreviewItem{},
		NotFound: []PreviewItem{},
	}
	for _, outcome := range outcomes {
		if outcome.found {
			result.Found = append(result.Found, outcome.item)
		} else {
			result.NotFound = append(result.NotFound, outcome.item)
		}
	}
	result.Summary = PreviewSummary{
		Total:    len(records),
		Found:    len(result.Found),
		NotFound: len(result.NotFound),
	}

	s.logger.Info("preview complete",
		"user_id", userID,
		"total", result.Summary.Total,
		"found", result.Summary.Found,
		"not_found", result.Summary.NotFound,
		"duration", time.Since(start),
	)

	return result, nil
}

// classifyRecord runs one record through the match/eligibility/diff pipeline.
// Soft failures fold into a not-found row; only infrastructure faults error.
func (s *Service) classifyRecord(ctx context.Context, user *domain.User, rec ExternalRecord) recordOutcome {
	name := normalize.Title(rec.Name)

	outcome, err := s.matcher.Match(ctx, rec.Name, rec.Year)
	if err != nil {
		return recordOutcome{err: err}
	}

	if !outcome.Found {
		return recordOutcome{item: PreviewItem{
			Name:   name,
			Year:   rec.Year,
			Reason: NotFoundNotInCatalog,
			Detail: outcome.Reason,
		}}
	}

	if !s.classifier.IsEligible(outcome.Movie) {
		return recordOutcome{item: PreviewItem{
			Name:   name,
			Year:   rec.Year,
			Reason: NotFoundNotEligible,
		}}
	}

	item := PreviewItem{
		Name:           name,
		Year:           rec.Year,
		CatalogID:      outcome.Movie.ID,
		Rating:         rec.Rating,
		Review:         rec.Review,
		RuntimeMinutes: outcome.Movie.RuntimeMinutes,
		Score:          outcome.Score,
		Status:         StatusNew,
	}
	if existing := domain.FindLedgerEntry(user.Ledger, outcome.Movie.ID); existing != nil {
		item.Status = StatusUpdate
		oldRating := existing.Rating
		item.OldRating = &oldRating
	}

	return recordOutcome{item: item, found: true}
}

// Confirm merges caller-approved items into the user's ledger: upsert by
// catalog ID, recompute stats from the full post-mutation ledger, persist
// everything as one save. Either the whole batch commits or none of it does.
// Confirms for the same user are serialized.
func (s *Service) Confirm(ctx context.Context, userID string, items []ApprovedItem) (*ConfirmResult, error) {
	if len(items) == 0 {
		return nil, errors.Validation("no approved items to import")
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	imported, updated := 0, 0
	for _, item := range items {
		entry := domain.WatchEntry{
			MovieID:        item.CatalogID,
			Title:          item.Title,
			Rating:         item.Rating,
			Review:         item.Review,
			RuntimeMinutes: item.RuntimeMinutes,
			WatchedAt:      now,
		}
		if user.UpsertWatch(entry) {
			updated++
		} else {
			imported++
		}
	}

	user.RefreshStats()

	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("persist ledger: %w", err)
	}

	s.logger.Info("import committed",
		"user_id", userID,
		"imported", imported,
		"updated", updated,
		"ledger_size", user.Stats.WatchedCount,
	)

	return &ConfirmResult{
		ImportedCount: imported,
		UpdatedCount:  updated,
		Stats:         user.Stats,
	}, nil
}

// Rate records or updates a single ledger entry outside the import flow.
// Same upsert invariant and stats recomputation as Confirm.
func (s *Service) Rate(ctx context.Context, userID, movieID string, rating float64, review string) (*ConfirmResult, error) {
	movie, err := s.store.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	return s.Confirm(ctx, userID, []ApprovedItem{{
		CatalogID:      movie.ID,
		Title:          movie.Title,
		Rating:         rating,
		Review:         review,
		RuntimeMinutes: movie.RuntimeMinutes,
	}})
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}
