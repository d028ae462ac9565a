// Package api provides the HTTP API server and handlers for the WatchVault application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/watchvaultapp/watchvault-server/internal/importer"
	"github.com/watchvaultapp/watchvault-server/internal/ratelimit"
	"github.com/watchvaultapp/watchvault-server/internal/search"
	"github.com/watchvaultapp/watchvault-server/internal/store"
	"github.com/watchvaultapp/watchvault-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	importService *importer.Service
	searchIndex   *search.Index
	importLimiter *ratelimit.KeyedLimiter
	validate      *validation.Validator
	router        *chi.Mux
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(s *store.Store, importService *importer.Service, searchIndex *search.Index, importLimiter *ratelimit.KeyedLimiter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		store:         s,
		importService: importService,
		searchIndex:   searchIndex,
		importLimiter: importLimiter,
		validate:      validation.New(),
		router:        chi.NewRouter(),
		logger:        logger,
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/import", func(r chi.Router) {
			r.Post("/preview", s.handleImportPreview)
			r.Post("/confirm", s.handleImportConfirm)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/movies/{id}", s.handleGetMovie)
			r.Get("/search", s.handleCatalogSearch)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleCreateUser)
			r.Get("/{id}/ledger", s.handleGetLedger)
			r.Post("/{id}/ledger", s.handleRateMovie)
			r.Get("/{id}/stats", s.handleGetStats)
		})
	})
}
