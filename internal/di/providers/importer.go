package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/watchvaultapp/watchvault-server/internal/config"
	"github.com/watchvaultapp/watchvault-server/internal/genre"
	"github.com/watchvaultapp/watchvault-server/internal/importer"
	"github.com/watchvaultapp/watchvault-server/internal/logger"
	"github.com/watchvaultapp/watchvault-server/internal/ratelimit"
)

// ProvideCatalogCache provides the in-memory catalog lookup cache.
func ProvideCatalogCache(i do.Injector) (*importer.Cache, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return importer.NewCache(storeHandle.Store, log.Logger), nil
}

// ProvideMatcher provides the catalog reconciliation matcher, tuned from config.
func ProvideMatcher(i do.Injector) (*importer.Matcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	cache := do.MustInvoke[*importer.Cache](i)
	log := do.MustInvoke[*logger.Logger](i)

	matcher := importer.NewMatcher(cache, log.Logger, importer.MatcherOptions{
		MinScore:       cfg.Import.MinScore,
		LengthRatio:    cfg.Import.LengthRatio,
		YearTolerance:  cfg.Import.YearTolerance,
		CandidateLimit: cfg.Import.CandidateLimit,
	})

	return matcher, nil
}

// ProvideGenreClassifier provides the import eligibility classifier.
func ProvideGenreClassifier(i do.Injector) (*genre.Classifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return genre.NewClassifier(cfg.Import.RequiredGenreCode, log.Logger), nil
}

// ProvideImportService provides the two-phase watch-history import service.
func ProvideImportService(i do.Injector) (*importer.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cache := do.MustInvoke[*importer.Cache](i)
	matcher := do.MustInvoke[*importer.Matcher](i)
	classifier := do.MustInvoke[*genre.Classifier](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := importer.NewService(storeHandle.Store, cache, matcher, classifier, log.Logger, cfg.Import.PreviewWorkers)

	log.Info("Import service ready",
		"min_score", cfg.Import.MinScore,
		"year_tolerance", cfg.Import.YearTolerance,
		"required_genre", cfg.Import.RequiredGenreCode,
		"preview_workers", cfg.Import.PreviewWorkers,
	)

	return svc, nil
}

// ImportLimiterHandle wraps the keyed rate limiter with shutdown capability.
type ImportLimiterHandle struct {
	*ratelimit.KeyedLimiter
}

// Shutdown implements do.Shutdownable.
func (h *ImportLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideImportLimiter provides the per-user import rate limiter.
func ProvideImportLimiter(i do.Injector) (*ImportLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.Import.RateLimitPerSecond, cfg.Import.RateLimitBurst)

	return &ImportLimiterHandle{KeyedLimiter: limiter}, nil
}

// WarmCatalogCache loads the catalog into the lookup cache in the background.
// Preview requests that arrive before warm-up completes fall through to the
// store indexes, so this is an optimization rather than a correctness step.
func WarmCatalogCache(i do.Injector) {
	cache := do.MustInvoke[*importer.Cache](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		if err := cache.Initialize(context.Background()); err != nil {
			log.Warn("Catalog cache warm-up failed, lookups will hit the store", "error", err)
		}
	}()
}
