package handler

import (
	"fmt"
	"net/http"

	"github.com/skyfeed/aggregator/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "aggregator_requests_total %d\n", snap.AggregateRequests)
	writeMetric(w, "aggregator_request_duration_seconds_count %d\n", snap.AggregateDurationCount)
	writeMetric(w, "aggregator_request_duration_seconds_sum %.6f\n", float64(snap.AggregateDurationTotalNs)/1e9)
	writeMetric(w, "aggregator_auth_failures_total %d\n", snap.AuthFailures)

	for _, u := range snap.Upstreams {
		writeMetric(w, "aggregator_upstream_fetches_total{source=%q,outcome=%q} %d\n", u.Source, metrics.OutcomeSuccess, u.Success)
		writeMetric(w, "aggregator_upstream_fetches_total{source=%q,outcome=%q} %d\n", u.Source, metrics.OutcomeDefaulted, u.Defaulted)
		writeMetric(w, "aggregator_upstream_duration_seconds_count{source=%q} %d\n", u.Source, u.DurationCount)
		writeMetric(w, "aggregator_upstream_duration_seconds_sum{source=%q} %.6f\n", u.Source, float64(u.DurationTotalNs)/1e9)
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
