package api

import (
	"net/http"
	"time"

	"github.com/watchvaultapp/watchvault-server/internal/http/response"
)

// componentHealth describes the health of a single component.
type componentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// healthResponse is the health check payload.
type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentHealth `json:"components"`
}

// handleHealthCheck reports overall and per-component health.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]componentHealth)
	overall := "healthy"

	dbStart := time.Now()
	db := componentHealth{Status: "healthy"}
	if _, err := s.store.CountMovies(r.Context()); err != nil {
		db.Status = "unhealthy"
		db.Message = err.Error()
		overall = "unhealthy"
	}
	db.Latency = time.Since(dbStart).String()
	components["database"] = db

	searchStart := time.Now()
	idx := componentHealth{Status: "healthy"}
	if _, err := s.searchIndex.DocumentCount(); err != nil {
		idx.Status = "unhealthy"
		idx.Message = err.Error()
		overall = "unhealthy"
	}
	idx.Latency = time.Since(searchStart).String()
	components["search"] = idx

	status := http.StatusOK
	if overall != "healthy" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, healthResponse{Status: overall, Components: components}, s.logger)
}
