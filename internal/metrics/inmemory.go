package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// UpstreamSnapshot holds the counters of one upstream source.
type UpstreamSnapshot struct {
	Source          string
	Success         uint64
	Defaulted       uint64
	DurationCount   uint64
	DurationTotalNs int64
}

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AggregateRequests        uint64
	AggregateDurationCount   uint64
	AggregateDurationTotalNs int64
	AuthFailures             uint64
	Upstreams                []UpstreamSnapshot // sorted by source
}

type upstreamCounters struct {
	success         uint64
	defaulted       uint64
	durationCount   uint64
	durationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	aggregateRequests        uint64
	aggregateDurationCount   uint64
	aggregateDurationTotalNs int64
	authFailures             uint64

	mu        sync.RWMutex
	upstreams map[string]*upstreamCounters
}

// NewInMemory returns a Recorder that stores counters in memory.
// sources are registered up front so they are reported before their first fetch.
func NewInMemory(sources ...string) *InMemoryRecorder {
	m := &InMemoryRecorder{upstreams: make(map[string]*upstreamCounters, len(sources))}
	for _, s := range sources {
		m.upstreams[s] = &upstreamCounters{}
	}
	return m
}

func (m *InMemoryRecorder) counters(source string) *upstreamCounters {
	m.mu.RLock()
	c, ok := m.upstreams[source]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.upstreams[source]; !ok {
		c = &upstreamCounters{}
		m.upstreams[source] = c
	}
	return c
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	snap := Snapshot{
		AggregateRequests:        atomic.LoadUint64(&m.aggregateRequests),
		AggregateDurationCount:   atomic.LoadUint64(&m.aggregateDurationCount),
		AggregateDurationTotalNs: atomic.LoadInt64(&m.aggregateDurationTotalNs),
		AuthFailures:             atomic.LoadUint64(&m.authFailures),
	}

	m.mu.RLock()
	for source, c := range m.upstreams {
		snap.Upstreams = append(snap.Upstreams, UpstreamSnapshot{
			Source:          source,
			Success:         atomic.LoadUint64(&c.success),
			Defaulted:       atomic.LoadUint64(&c.defaulted),
			DurationCount:   atomic.LoadUint64(&c.durationCount),
			DurationTotalNs: atomic.LoadInt64(&c.durationTotalNs),
		})
	}
	m.mu.RUnlock()

	sort.Slice(snap.Upstreams, func(i, j int) bool {
		return snap.Upstreams[i].Source < snap.Upstreams[j].Source
	})
	return snap
}

// ObserveUpstreamFetch records one upstream fetch and its outcome.
func (m *InMemoryRecorder) ObserveUpstreamFetch(source, outcome string, duration time.Duration) {
	c := m.counters(source)
	if outcome == OutcomeSuccess {
		atomic.AddUint64(&c.success, 1)
	} else {
		atomic.AddUint64(&c.defaulted, 1)
	}
	atomic.AddUint64(&c.durationCount, 1)
	atomic.AddInt64(&c.durationTotalNs, duration.Nanoseconds())
}

// IncAggregateRequest increments the aggregate request counter.
func (m *InMemoryRecorder) IncAggregateRequest() {
	atomic.AddUint64(&m.aggregateRequests, 1)
}

// ObserveAggregateDuration records how long an aggregate request took.
func (m *InMemoryRecorder) ObserveAggregateDuration(duration time.Duration) {
	atomic.AddUint64(&m.aggregateDurationCount, 1)
	atomic.AddInt64(&m.aggregateDurationTotalNs, duration.Nanoseconds())
}

// IncAuthFailure increments the rejected request counter.
func (m *InMemoryRecorder) IncAuthFailure() {
	atomic.AddUint64(&m.authFailures, 1)
}
