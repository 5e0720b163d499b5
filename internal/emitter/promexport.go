package emitter

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// PromExport exposes the latest value of every emitted metric in Prometheus
// text exposition format, as a sidecar scrape target. Slash-separated metric
// paths are sanitized to Prometheus naming rules; the original units are
// carried in the HELP line.
//
// Values are gauges from Prometheus's point of view: counters have already
// been converted to per-second rates before they reach any emitter.
type PromExport struct {
	reg *registry
}

// NewPromExport creates a PromExport whose entries expire after ttl without
// a fresh value.
func NewPromExport(ttl time.Duration) *PromExport {
	return &PromExport{reg: newRegistry(ttl)}
}

// Emit records the latest value for name.
func (p *PromExport) Emit(name, units string, value float64) {
	p.reg.put(name, units, value)
}

// Run starts the registry's TTL eviction loop; it blocks until ctx is
// cancelled.
func (p *PromExport) Run(ctx context.Context) {
	p.reg.run(ctx)
}

// ServeHTTP renders the current registry as Prometheus text format.
func (p *PromExport) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	entries := p.reg.fresh()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))

	enc := expfmt.NewEncoder(w, format)
	for _, name := range names {
		e := entries[name]
		mf := &dto.MetricFamily{
			Name: proto.String(sanitizeName(name)),
			Help: proto.String(name + " (" + e.units + ")"),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{
				{Gauge: &dto.Gauge{Value: proto.Float64(e.value)}},
			},
		}
		if err := enc.Encode(mf); err != nil {
			slog.Warn("emitter: exposition encode failed", "metric", name, "err", err)
			return
		}
	}
}

// sanitizeName maps a slash-separated metric path onto the Prometheus
// metric name charset [a-zA-Z0-9_:].
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i, r := range name {
		valid := r == '_' || r == ':' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9' && i > 0)
		if valid {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
