package derive

import (
	"sync"
	"time"
)

// Key identifies one counter series: a metric name plus the node it was
// observed on. Cluster-scoped metrics leave Node empty. Two nodes reporting
// the same metric name are independent series.
type Key struct {
	Metric string
	Node   string
}

// counterState is the stored baseline for one series.
type counterState struct {
	value      float64
	observedAt time.Time
}

// Engine converts cumulative counter samples into per-second rates by
// remembering the previous observation per series. It is the only writer
// of the counter table; construct one instance and pass it to the pipeline.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	counters map[Key]counterState
}

// NewEngine returns a ready-to-use Engine with an empty counter table.
func NewEngine() *Engine {
	return &Engine{counters: make(map[Key]counterState)}
}

// Process ingests one cumulative sample and returns the derived per-second
// rate.
//
// now is passed explicitly so callers (and tests) control the clock without
// sleeping. Use the poll cycle's timestamp in production.
//
// The first sample for a key records the baseline and returns 0 — no rate
// exists without a prior observation. A sample below the baseline means the
// counter was reset (entity restart); the sample becomes the new baseline
// and 0 is returned, never a negative rate. A non-positive elapsed time
// (duplicate or out-of-order cycle) returns 0 without touching the baseline.
func (e *Engine) Process(key Key, value float64, now time.Time) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok := e.counters[key]
	if !ok {
		e.counters[key] = counterState{value: value, observedAt: now}
		return 0
	}

	delta := value - prev.value
	if delta < 0 {
		// Counter reset — rebaseline.
		e.counters[key] = counterState{value: value, observedAt: now}
		return 0
	}

	elapsed := now.Sub(prev.observedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}

	e.counters[key] = counterState{value: value, observedAt: now}
	return delta / elapsed
}

// Len returns the number of series currently tracked.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.counters)
}
