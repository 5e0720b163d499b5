package emitter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// entry is a metric's latest value together with the time it was received.
type entry struct {
	units     string
	value     float64
	updatedAt time.Time
}

// registry is a thread-safe latest-value table keyed by metric name.
// A background loop (run) periodically evicts entries that have not been
// refreshed within the configured TTL, so series for nodes that left the
// cluster eventually stop being exposed.
type registry struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

func newRegistry(ttl time.Duration) *registry {
	return &registry{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// put stores or replaces the latest value for name.
func (r *registry) put(name, units string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[name] = entry{units: units, value: value, updatedAt: r.now()}
}

// fresh returns a copy of all entries whose updatedAt is within the TTL.
// Stale entries that have not yet been evicted are excluded.
func (r *registry) fresh() map[string]entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := r.now().Add(-r.ttl)
	out := make(map[string]entry, len(r.data))
	for name, e := range r.data {
		if e.updatedAt.After(cutoff) {
			out[name] = e
		}
	}
	return out
}

// evict removes entries whose updatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (r *registry) evict(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := now.Add(-r.ttl)
	removed := 0
	for name, e := range r.data {
		if !e.updatedAt.After(cutoff) {
			delete(r.data, name)
			removed++
		}
	}
	return removed
}

// run starts the background TTL eviction loop. It ticks at half the TTL
// interval (minimum 1 second) so entries are evicted promptly. run blocks
// until ctx is cancelled.
func (r *registry) run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.evict(now); n > 0 {
				slog.Debug("emitter: evicted stale metrics", "count", n)
			}
		}
	}
}
