// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Fetch outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeDefaulted = "defaulted"
)

// Recorder captures metric events for the aggregator.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Upstream metrics
	ObserveUpstreamFetch(source, outcome string, duration time.Duration)

	// Request metrics
	IncAggregateRequest()
	ObserveAggregateDuration(duration time.Duration)
	IncAuthFailure()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
