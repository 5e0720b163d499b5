package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/elasticwatch/elasticwatch/internal/config"
)

const (
	agentName    = "elasticwatch-agent"
	agentVersion = "0.1.0"

	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
	sendTimeout       = 10 * time.Second
)

// Metric is the wire unit delivered to the monitoring backend.
type Metric struct {
	Name  string  `json:"name"`
	Units string  `json:"units"`
	Value float64 `json:"value"`
}

// payload is one POST body: a batch of metrics tagged with the agent
// identity and the cluster's human-readable name.
type payload struct {
	Agent     string   `json:"agent"`
	Version   string   `json:"version"`
	Component string   `json:"component"`
	Metrics   []Metric `json:"metrics"`
}

// HTTP buffers metrics and ships them to the monitoring backend in JSON
// batches. Emit is non-blocking; when the buffer is full the oldest metric
// is evicted. Run must be called in a goroutine to drain the buffer and
// handle backoff after failed deliveries. Delivery failures never surface
// to the pipeline.
type HTTP struct {
	cfg       config.EmitterConfig
	component string
	client    *http.Client
	buf       chan Metric
}

// NewHTTP creates an HTTP emitter. component is the cluster name cached at
// startup; it labels every batch.
func NewHTTP(cfg config.EmitterConfig, component string) *HTTP {
	return &HTTP{
		cfg:       cfg,
		component: component,
		client:    &http.Client{Timeout: sendTimeout},
		buf:       make(chan Metric, cfg.BufferSize),
	}
}

// Emit enqueues one metric. If the buffer is full the oldest entry is
// evicted to make room — the backend prefers fresh data over complete data.
func (h *HTTP) Emit(name, units string, value float64) {
	m := Metric{Name: name, Units: units, Value: value}
	select {
	case h.buf <- m:
	default:
		select {
		case <-h.buf:
			slog.Warn("emitter: buffer full, evicted oldest metric",
				"name", name, "buffer_cap", cap(h.buf))
		default:
		}
		h.buf <- m
	}
}

// Run drains the buffer, posting metric batches to the backend. After a
// failed delivery the batch is requeued (buffer space permitting) and the
// next attempt waits out a truncated exponential backoff. Run blocks until
// ctx is cancelled.
func (h *HTTP) Run(ctx context.Context) {
	bo := newBackoff()

	for {
		select {
		case <-ctx.Done():
			return

		case first := <-h.buf:
			batch := h.collect(first)

			if err := h.post(ctx, batch); err != nil {
				wait := bo.next()
				slog.Warn("emitter: delivery failed, will retry",
					"endpoint", h.cfg.Endpoint,
					"batch", len(batch),
					"err", err,
					"retry_in", wait)
				h.requeue(batch)
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
				continue
			}

			bo.reset()
			slog.Debug("emitter: batch delivered", "count", len(batch))
		}
	}
}

// collect drains up to BatchSize-1 further metrics without blocking.
func (h *HTTP) collect(first Metric) []Metric {
	batch := make([]Metric, 1, h.cfg.BatchSize)
	batch[0] = first
	for len(batch) < h.cfg.BatchSize {
		select {
		case m := <-h.buf:
			batch = append(batch, m)
		default:
			return batch
		}
	}
	return batch
}

// requeue puts a failed batch back on the buffer. Metrics that no longer
// fit are dropped; the next poll cycle supplies fresh values anyway.
func (h *HTTP) requeue(batch []Metric) {
	for _, m := range batch {
		select {
		case h.buf <- m:
		default:
			return
		}
	}
}

func (h *HTTP) post(ctx context.Context, batch []Metric) error {
	body, err := json.Marshal(payload{
		Agent:     agentName,
		Version:   agentVersion,
		Component: h.component,
		Metrics:   batch,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, h.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	switch h.cfg.Auth.Mode {
	case "apikey":
		req.Header.Set("X-Api-Key", h.cfg.Auth.Key())
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+h.cfg.Auth.Token())
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{current: backoffInitial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	// Apply ±25 % jitter.
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	// Advance for next call.
	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}

func (b *backoff) reset() {
	b.current = backoffInitial
}
