package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
	"github.com/watchvaultapp/watchvault-server/internal/normalize"
	"github.com/watchvaultapp/watchvault-server/internal/store"
)

// Cache pre-loads the catalog into memory for fast batch matching. Before
// Initialize has run (or if it failed) lookups fall through to the badger
// indexes, so matching stays correct either way.
type Cache struct {
	store  *store.Store
	logger *slog.Logger

	mu          sync.RWMutex
	ready       bool
	byTitleYear map[string]*domain.Movie // "<normalized title>|<year>" -> movie
	byYear      map[int][]*domain.Movie  // resolved year -> movies
}

// NewCache creates an unpopulated cache over the store.
func NewCache(s *store.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  s,
		logger: logger,
	}
}

// Initialize loads the full catalog into memory. Idempotent: the orchestrator
// calls it once per preview batch and repeat calls are no-ops.
func (c *Cache) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}

	movies, err := c.store.ListAllMovies(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	c.byTitleYear = make(map[string]*domain.Movie, len(movies))
	c.byYear = make(map[int][]*domain.Movie)

	for _, movie := range movies {
		year := movie.ResolvedYear()
		c.byTitleYear[cacheKey(movie.Title, year)] = movie
		if year > 0 {
			c.byYear[year] = append(c.byYear[year], movie)
		}
	}

	c.ready = true
	c.logger.Info("catalog cache populated", "total", len(movies))
	return nil
}

// FindExact looks up a movie by normalized title and exact year.
func (c *Cache) FindExact(ctx context.Context, title string, year int) (*domain.Movie, error) {
	c.mu.RLock()
	if c.ready {
		movie, ok := c.byTitleYear[cacheKey(title, year)]
		c.mu.RUnlock()
		if !ok {
			return nil, store.ErrMovieNotFound
		}
		return movie, nil
	}
	c.mu.RUnlock()

	return c.store.FindExact(ctx, title, year)
}

// FindInYearWindow returns movies with a year in [year-tolerance, year+tolerance],
// capped at limit.
func (c *Cache) FindInYearWindow(ctx context.Context, year, tolerance, limit int) ([]*domain.Movie, error) {
	c.mu.RLock()
	if c.ready {
		var movies []*domain.Movie
		for y := year - tolerance; y <= year+tolerance; y++ {
			for _, movie := range c.byYear[y] {
				if len(movies) >= limit {
					c.mu.RUnlock()
					return movies, nil
				}
				movies = append(movies, movie)
			}
		}
		c.mu.RUnlock()
		return movies, nil
	}
	c.mu.RUnlock()

	return c.store.FindInYearWindow(ctx, year, tolerance, limit)
}

func cacheKey(title string, year int) string {
	return fmt.Sprintf("%s|%d", normalize.ForComparison(title), year)
}
