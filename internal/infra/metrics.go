package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	eventsProcessed  atomic.Uint64
	restingRecorded  atomic.Uint64
	bookHits         atomic.Uint64
	seedsSynthesized atomic.Uint64
	seedsSkipped     atomic.Uint64
	contraCreated    atomic.Uint64
	contraIncrements atomic.Uint64
	errorsTotal      atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordEvent records one generation step with latency.
func (m *Metrics) RecordEvent(latencyNs int64) {
	m.eventsProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordResting records an order id entering the simulated book.
func (m *Metrics) RecordResting() {
	m.restingRecorded.Add(1)
}

// RecordBookHit records a cancel/replace resolved against the book.
func (m *Metrics) RecordBookHit() {
	m.bookHits.Add(1)
}

// RecordSeed records a synthesized seed order.
func (m *Metrics) RecordSeed() {
	m.seedsSynthesized.Add(1)
}

// RecordSeedSkipped records a cancel that had neither a resting order nor a seed.
func (m *Metrics) RecordSeedSkipped() {
	m.seedsSkipped.Add(1)
}

// RecordContra records contra liquidity: created=true for a new record, false for growth.
func (m *Metrics) RecordContra(created bool) {
	if created {
		m.contraCreated.Add(1)
	} else {
		m.contraIncrements.Add(1)
	}
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	EventsProcessed  uint64    `json:"events_processed"`
	RestingRecorded  uint64    `json:"resting_recorded"`
	BookHits         uint64    `json:"book_hits"`
	SeedsSynthesized uint64    `json:"seeds_synthesized"`
	SeedsSkipped     uint64    `json:"seeds_skipped"`
	ContraCreated    uint64    `json:"contra_created"`
	ContraIncrements uint64    `json:"contra_increments"`
	ErrorsTotal      uint64    `json:"errors_total"`
	AvgLatencyNs     int64     `json:"avg_latency_ns"`
	Timestamp        time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		EventsProcessed:  m.eventsProcessed.Load(),
		RestingRecorded:  m.restingRecorded.Load(),
		BookHits:         m.bookHits.Load(),
		SeedsSynthesized: m.seedsSynthesized.Load(),
		SeedsSkipped:     m.seedsSkipped.Load(),
		ContraCreated:    m.contraCreated.Load(),
		ContraIncrements: m.contraIncrements.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		AvgLatencyNs:     avgLatency,
		Timestamp:        time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.eventsProcessed.Store(0)
	m.restingRecorded.Store(0)
	m.bookHits.Store(0)
	m.seedsSynthesized.Store(0)
	m.seedsSkipped.Store(0)
	m.contraCreated.Store(0)
	m.contraIncrements.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
}
