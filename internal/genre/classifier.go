package genre

import (
	"log/slog"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
)

// Classifier decides whether a catalog entry qualifies for import.
// Eligibility is a single-tag test against a required numeric genre code.
type Classifier struct {
	requiredCode int
	logger       *slog.Logger
}

// NewClassifier creates a classifier for the given required genre code.
func NewClassifier(requiredCode int, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		requiredCode: requiredCode,
		logger:       logger,
	}
}

// RequiredCode returns the configured eligibility code.
func (c *Classifier) RequiredCode() int {
	return c.requiredCode
}

// IsEligible reports whether the movie carries the required genre.
// Numeric codes are checked when present; otherwise genre names are mapped
// through the taxonomy. A movie with no genre data in either representation
// is not eligible - the gate fails closed, and the gap is logged at warning
// level since it usually means a broken catalog record.
func (c *Classifier) IsEligible(movie *domain.Movie) bool {
	if len(movie.GenreCodes) > 0 {
		for _, code := range movie.GenreCodes {
			if code == c.requiredCode {
				return true
			}
		}
		return false
	}

	if len(movie.GenreNames) > 0 {
		for _, name := range movie.GenreNames {
			if CodeForName(name) == c.requiredCode {
				return true
			}
		}
		return false
	}

	c.logger.Warn("catalog entry has no genre data, treating as not eligible",
		"movie_id", movie.ID,
		"title", movie.Title,
	)
	return false
}
