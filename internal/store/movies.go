package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
	"github.com/watchvaultapp/watchvault-server/internal/normalize"
)

const (
	moviePrefix        = "movie:"
	movieByTitlePrefix = "idx:movies:title:" // "<normalized title>|<year>" -> id, for exact lookups
	movieByYearPrefix  = "idx:movies:year:"  // "<year>:<id>" -> id, for candidate windows
)

// ErrMovieNotFound is returned when a catalog entry cannot be found.
var ErrMovieNotFound = ErrNotFound.WithMessage("movie not found")

// titleIndexKey builds the exact-match index key: comparison-normalized
// title plus exact year. The normalization makes the exact stage tolerant
// of case and punctuation without involving the fuzzy ranker.
func titleIndexKey(title string, year int) []byte {
	return fmt.Appendf(nil, "%s%s|%d", movieByTitlePrefix, normalize.ForComparison(title), year)
}

// yearIndexKey builds the candidate-window index key. Years are fixed-width
// so badger prefix iteration stays in order.
func yearIndexKey(year int, movieID string) []byte {
	return fmt.Appendf(nil, "%s%04d:%s", movieByYearPrefix, year, movieID)
}

// CreateMovie adds a catalog entry and its lookup indexes.
func (s *Store) CreateMovie(_ context.Context, movie *domain.Movie) error {
	key := []byte(moviePrefix + movie.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check movie exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists.WithMessage("movie already exists")
	}

	now := time.Now()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, key, movie); err != nil {
			return fmt.Errorf("save movie: %w", err)
		}

		titleKey := titleIndexKey(movie.Title, movie.ResolvedYear())

		// Two entries collapsing to the same normalized title and year
		// would shadow each other in exact lookups. Surface it to the
		// operator; the newest entry wins.
		if item, err := txn.Get(titleKey); err == nil {
			_ = item.Value(func(existingID []byte) error {
				if string(existingID) != movie.ID {
					s.logger.Warn("catalog title collision, exact lookups resolve to the newest entry",
						"title", movie.Title,
						"year", movie.ResolvedYear(),
						"existing_id", string(existingID),
						"new_id", movie.ID,
					)
				}
				return nil
			})
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check title index: %w", err)
		}

		if err := txn.Set(titleKey, []byte(movie.ID)); err != nil {
			return fmt.Errorf("set title index: %w", err)
		}

		// Movies without a resolvable year never appear in candidate windows.
		if year := movie.ResolvedYear(); year > 0 {
			if err := txn.Set(yearIndexKey(year, movie.ID), []byte(movie.ID)); err != nil {
				return fmt.Errorf("set year index: %w", err)
			}
		}
		return nil
	})
}

// GetMovie retrieves a catalog entry by ID.
func (s *Store) GetMovie(_ context.Context, id string) (*domain.Movie, error) {
	key := []byte(moviePrefix + id)

	var movie domain.Movie
	if err := s.get(key, &movie); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return &movie, nil
}

// FindExact looks up a catalog entry whose normalized title and year match
// exactly. Returns ErrMovieNotFound when there is no such entry.
func (s *Store) FindExact(ctx context.Context, title string, year int) (*domain.Movie, error) {
	var movieID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(titleIndexKey(title, year))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			movieID = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup title index: %w", err)
	}

	return s.GetMovie(ctx, movieID)
}

// FindInYearWindow returns catalog entries whose year lies in
// [year-tolerance, year+tolerance] inclusive, capped at limit.
func (s *Store) FindInYearWindow(ctx context.Context, year, tolerance, limit int) ([]*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		for y := year - tolerance; y <= year+tolerance; y++ {
			if y <= 0 {
				continue
			}
			prefix := fmt.Appendf(nil, "%s%04d:", movieByYearPrefix, y)

			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			for it.Rewind(); it.Valid(); it.Next() {
				if len(ids) >= limit {
					it.Close()
					return nil
				}
				err := it.Item().Value(func(val []byte) error {
					ids = append(ids, string(val))
					return nil
				})
				if err != nil {
					it.Close()
					return err
				}
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan year window: %w", err)
	}

	movies := make([]*domain.Movie, 0, len(ids))
	for _, id := range ids {
		movie, err := s.GetMovie(ctx, id)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

// ListAllMovies returns the entire catalog. Used for cache warm-up and
// search index rebuilds, not for request-path lookups.
func (s *Store) ListAllMovies(_ context.Context) ([]*domain.Movie, error) {
	var movies []*domain.Movie

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(moviePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var movie domain.Movie
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &movie)
			})
			if err != nil {
				return fmt.Errorf("decode movie: %w", err)
			}
			movies = append(movies, &movie)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return movies, nil
}

// CountMovies returns the catalog size.
func (s *Store) CountMovies(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(moviePrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
