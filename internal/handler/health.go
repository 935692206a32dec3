package handler

import (
	"net/http"
)

// HealthHandler serves the health check endpoint.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports that the process is serving requests.
// It checks no upstream; an unavailable upstream only degrades aggregate values.
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}
