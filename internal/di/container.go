// Package di provides dependency injection configuration for the WatchVault server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/watchvaultapp/watchvault-server/internal/config"
	"github.com/watchvaultapp/watchvault-server/internal/di/providers"
	"github.com/watchvaultapp/watchvault-server/internal/genre"
	"github.com/watchvaultapp/watchvault-server/internal/importer"
	"github.com/watchvaultapp/watchvault-server/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Import pipeline
	do.Provide(injector, providers.ProvideCatalogCache)
	do.Provide(injector, providers.ProvideMatcher)
	do.Provide(injector, providers.ProvideGenreClassifier)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideImportLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Import pipeline
	_ = do.MustInvoke[*importer.Cache](injector)
	_ = do.MustInvoke[*importer.Matcher](injector)
	_ = do.MustInvoke[*genre.Classifier](injector)
	_ = do.MustInvoke[*importer.Service](injector)
	_ = do.MustInvoke[*providers.ImportLimiterHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	// Warm the catalog cache in the background so the first preview
	// does not pay the full load cost.
	providers.WarmCatalogCache(injector)

	return nil
}
