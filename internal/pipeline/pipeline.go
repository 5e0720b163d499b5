package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/elasticwatch/elasticwatch/internal/aggregate"
	"github.com/elasticwatch/elasticwatch/internal/config"
	"github.com/elasticwatch/elasticwatch/internal/derive"
	"github.com/elasticwatch/elasticwatch/internal/elastic"
)

// Fetcher retrieves the two statistics snapshots for one poll cycle.
// Implemented by elastic.Client; faked in tests.
type Fetcher interface {
	ClusterStats(ctx context.Context) (*elastic.ClusterStats, error)
	NodesStats(ctx context.Context) (*elastic.NodesStats, error)
}

// Emitter receives each derived metric. Implementations own their failure
// handling — the pipeline never retries or inspects emission outcomes.
type Emitter interface {
	Emit(name, units string, value float64)
}

// Pipeline orchestrates one poll cycle: fetch, aggregate, derive, emit.
// A cycle that fails at the fetch boundary emits nothing and leaves all
// counter baselines untouched, so the next successful cycle derives rates
// against the last good observation.
type Pipeline struct {
	fetcher Fetcher
	engine  *derive.Engine
	emitter Emitter
	extras  []config.ExtraMetric

	// mu serializes cycles. A tick arriving while the previous cycle is
	// still running is skipped, not queued — overlapping cycles are the
	// one race this design must prevent.
	mu sync.Mutex
}

// New creates a Pipeline around an explicitly owned derivation engine.
func New(f Fetcher, e *derive.Engine, em Emitter, extras []config.ExtraMetric) (*Pipeline, error) {
	if f == nil {
		return nil, fmt.Errorf("pipeline: nil fetcher")
	}
	if e == nil {
		return nil, fmt.Errorf("pipeline: nil engine")
	}
	if em == nil {
		return nil, fmt.Errorf("pipeline: nil emitter")
	}
	for _, x := range extras {
		if isBuiltinName(x.Name) {
			return nil, fmt.Errorf("pipeline: extra metric %q collides with a built-in metric", x.Name)
		}
	}
	return &Pipeline{fetcher: f, engine: e, emitter: em, extras: extras}, nil
}

// Run executes one poll cycle at the given timestamp. It returns the fetch
// error that aborted the cycle, or nil when the cycle completed (or was
// skipped because the previous one is still running).
//
// Both snapshots are fetched before anything is emitted: a cycle either
// emits its full set of metrics or none at all.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	if !p.mu.TryLock() {
		slog.Warn("pipeline: previous cycle still running, skipping tick")
		return nil
	}
	defer p.mu.Unlock()

	cluster, err := p.fetcher.ClusterStats(ctx)
	if err != nil {
		return fmt.Errorf("fetch cluster stats: %w", err)
	}
	nodes, err := p.fetcher.NodesStats(ctx)
	if err != nil {
		return fmt.Errorf("fetch nodes stats: %w", err)
	}

	p.reportClusterStats(cluster, now)
	p.reportQueryTotals(nodes)
	for _, node := range nodes.Nodes {
		node := node
		p.reportNodeStats(&node, now)
	}
	p.reportExtraMetrics(cluster, nodes, now)

	return nil
}

// reportClusterStats emits every cluster-scoped metric plus the version
// diversity aggregate.
func (p *Pipeline) reportClusterStats(stats *elastic.ClusterStats, now time.Time) {
	for _, m := range clusterMetrics {
		value := m.value(stats)
		if m.kind == KindCounter {
			value = p.engine.Process(derive.Key{Metric: m.name}, value, now)
		}
		p.emitter.Emit(m.name, m.units, value)
	}

	p.emitter.Emit("V1/ClusterStats/NumberOfVersionsInCluster", "versions",
		float64(aggregate.DistinctVersionCount(stats)))
}

// reportQueryTotals emits the cluster-wide query sums computed across the
// node snapshot.
func (p *Pipeline) reportQueryTotals(stats *elastic.NodesStats) {
	totals := aggregate.TotalQueries(stats)
	p.emitter.Emit("V1/QueriesStats/Search", "queries", totals.Search)
	p.emitter.Emit("V1/QueriesStats/Fetch", "queries", totals.Fetch)
	p.emitter.Emit("V1/QueriesStats/Get", "queries", totals.Get)
	p.emitter.Emit("V1/QueriesStats/Index", "queries", totals.Index)
	p.emitter.Emit("V1/QueriesStats/Delete", "queries", totals.Delete)
}

// reportNodeStats emits every node-scoped metric for one node, then the two
// computed specials: swap-used ratio and load average.
func (p *Pipeline) reportNodeStats(node *elastic.NodeStats, now time.Time) {
	for _, m := range nodeMetrics {
		value := m.value(node)
		if m.kind == KindCounter {
			value = p.engine.Process(derive.Key{Metric: m.name, Node: node.Name}, value, now)
		}
		p.emitter.Emit(nodeMetricName(m.name, node.Name), m.units, value)
	}

	// Swap-used ratio. A zero or absent denominator degrades to 0, never
	// to an error.
	var swapUsed float64
	if total := node.OS.Swap.UsedInBytes + node.OS.Swap.FreeInBytes; total > 0 {
		swapUsed = node.OS.Swap.UsedInBytes / total
	}
	p.emitter.Emit(nodeMetricName("V1/NodeStats/Os/Swap/Percent", node.Name), "percent", swapUsed)

	// Load average: first element when reported; omitted entirely (not
	// zero) when the platform does not provide one.
	if len(node.OS.LoadAverage) > 0 {
		p.emitter.Emit(nodeMetricName("V1/NodeStats/Os/LoadAverage", node.Name), "units",
			node.OS.LoadAverage[0])
	}
}

// nodeMetricName appends the node name as the final path segment.
func nodeMetricName(metric, node string) string {
	return metric + "/" + node
}
