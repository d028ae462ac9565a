package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/watchvaultapp/watchvault-server/internal/errors"
	"github.com/watchvaultapp/watchvault-server/internal/http/response"
)

// decodeAndValidate decodes a JSON request body into dst and runs struct
// validation. Returns a domain error suitable for response.HandleError.
func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		return errors.Validation("invalid JSON body").WithCause(err)
	}
	return s.validate.Validate(dst)
}

// allowImport enforces the per-user import rate limit. Writes a 429 and
// returns false when the budget is exhausted.
func (s *Server) allowImport(w http.ResponseWriter, userID string) bool {
	if s.importLimiter == nil || s.importLimiter.Allow(userID) {
		return true
	}
	s.logger.Warn("import rate limit exceeded", "user_id", userID)
	response.TooManyRequests(w, "too many import requests, slow down", s.logger)
	return false
}
