package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/watchvaultapp/watchvault-server/internal/http/response"
	"github.com/watchvaultapp/watchvault-server/internal/search"
)

// handleGetMovie returns one catalog entry.
func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.store.GetMovie(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, movie, s.logger)
}

// handleCatalogSearch runs a full-text catalog search. Backs the import
// review flow: rows the reconciler rejected get resolved by hand here.
func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := search.DefaultParams()
	params.Query = q.Get("q")
	params.GenreSlug = q.Get("genre")
	params.MinYear = intQuery(q.Get("year_min"))
	params.MaxYear = intQuery(q.Get("year_max"))
	if year := intQuery(q.Get("year")); year > 0 {
		params.MinYear, params.MaxYear = year, year
	}
	if limit := intQuery(q.Get("limit")); limit > 0 && limit <= 100 {
		params.Limit = limit
	}
	params.Offset = intQuery(q.Get("offset"))

	result, err := s.searchIndex.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

// intQuery parses a query parameter as int, returning 0 on absence or junk.
func intQuery(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
