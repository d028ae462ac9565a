package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchvaultapp/watchvault-server/internal/domain"
	"github.com/watchvaultapp/watchvault-server/internal/http/response"
	"github.com/watchvaultapp/watchvault-server/internal/id"
)

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=80"`
}

type rateMovieRequest struct {
	MovieID string  `json:"movie_id" validate:"required"`
	Rating  float64 `json:"rating" validate:"gte=0,lte=5"`
	Review  string  `json:"review,omitempty"`
}

// handleCreateUser creates a minimal user account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	userID, err := id.Generate("usr")
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	user := &domain.User{
		ID:          userID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Ledger:      []domain.WatchEntry{},
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, user, s.logger)
}

// handleGetLedger returns the user's full watch ledger.
func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, user.Ledger, s.logger)
}

// handleRateMovie records or updates a single watch entry directly,
// bypassing the import flow but honoring the same ledger invariants.
func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	var req rateMovieRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.importService.Rate(r.Context(), chi.URLParam(r, "id"), req.MovieID, req.Rating, req.Review)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

// handleGetStats returns the user's aggregate watch stats.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, user.Stats, s.logger)
}
