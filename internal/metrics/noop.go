package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveUpstreamFetch is a no-op.
func (n *NoopRecorder) ObserveUpstreamFetch(source, outcome string, duration time.Duration) {}

// IncAggregateRequest is a no-op.
func (n *NoopRecorder) IncAggregateRequest() {}

// ObserveAggregateDuration is a no-op.
func (n *NoopRecorder) ObserveAggregateDuration(duration time.Duration) {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure() {}
