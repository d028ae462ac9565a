package api

import (
	"net/http"
	"strings"

	"github.com/watchvaultapp/watchvault-server/internal/http/response"
	"github.com/watchvaultapp/watchvault-server/internal/importer"
)

// previewRequest is the JSON body for POST /api/v1/import/preview.
type previewRequest struct {
	UserID  string                    `json:"user_id" validate:"required"`
	Records []importer.ExternalRecord `json:"records" validate:"required,min=1,dive"`
}

// confirmRequest is the JSON body for POST /api/v1/import/confirm.
type confirmRequest struct {
	UserID string                  `json:"user_id" validate:"required"`
	Items  []importer.ApprovedItem `json:"items" validate:"required,min=1,dive"`
}

// handleImportPreview classifies a watch-history batch without writing
// anything. Accepts either a JSON body or a raw text/csv export with
// ?user_id= on the query string.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest

	if isCSV(r) {
		req.UserID = r.URL.Query().Get("user_id")
		if req.UserID == "" {
			response.BadRequest(w, "user_id query parameter is required for CSV uploads", s.logger)
			return
		}
		records, err := importer.ParseCSV(r.Body)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		req.Records = records
	} else {
		if err := s.decodeAndValidate(r, &req); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
	}

	if !s.allowImport(w, req.UserID) {
		return
	}

	result, err := s.importService.Preview(r.Context(), req.UserID, req.Records)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleImportConfirm commits an approved subset of a prior preview.
func (s *Server) handleImportConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if !s.allowImport(w, req.UserID) {
		return
	}

	result, err := s.importService.Confirm(r.Context(), req.UserID, req.Items)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

func isCSV(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(contentType), "text/csv")
}
