package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/skyfeed/aggregator/internal/middleware"
	"github.com/skyfeed/aggregator/internal/model"
)

// Aggregator builds the combined upstream result.
type Aggregator interface {
	Aggregate(ctx context.Context) model.AggregateResult
}

// AggregateHandler serves the aggregate endpoint.
type AggregateHandler struct {
	aggregator Aggregator
	logger     *slog.Logger
}

// NewAggregateHandler creates a new AggregateHandler.
func NewAggregateHandler(aggregator Aggregator, logger *slog.Logger) *AggregateHandler {
	return &AggregateHandler{
		aggregator: aggregator,
		logger:     logger,
	}
}

// Aggregate returns data from every upstream in one document.
// Authentication is enforced by middleware before this runs.
//
// GET /v1/aggregate
func (h *AggregateHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	result := h.aggregator.Aggregate(r.Context())

	h.logger.Debug("aggregate built",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.Int64("iss_timestamp", result.ISS.Timestamp),
		slog.String("launch", result.SpaceX.Name),
	)

	writeJSON(w, http.StatusOK, result)
}
