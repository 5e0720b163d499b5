package pipeline

import (
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/elasticwatch/elasticwatch/internal/derive"
	"github.com/elasticwatch/elasticwatch/internal/elastic"
)

// reportExtraMetrics emits the operator-defined metrics extracted from the
// raw stats bodies by gjson path. A path that is absent or non-numeric in
// this cycle's snapshot is skipped, not reported as zero — the field may
// simply not exist on this Elasticsearch version.
func (p *Pipeline) reportExtraMetrics(cluster *elastic.ClusterStats, nodes *elastic.NodesStats, now time.Time) {
	for _, em := range p.extras {
		switch em.Scope {
		case "cluster":
			result := gjson.GetBytes(cluster.Raw, em.Path)
			if !numeric(result) {
				slog.Debug("pipeline: extra metric path not found", "name", em.Name, "path", em.Path)
				continue
			}
			value := result.Float()
			if em.Kind == "counter" {
				value = p.engine.Process(derive.Key{Metric: em.Name}, value, now)
			}
			p.emitter.Emit(em.Name, em.Units, value)

		case "node":
			// Iterate the raw node map so node IDs never need gjson path
			// escaping.
			gjson.GetBytes(nodes.Raw, "nodes").ForEach(func(_, node gjson.Result) bool {
				nodeName := node.Get("name").String()
				result := node.Get(em.Path)
				if nodeName == "" || !numeric(result) {
					return true
				}
				value := result.Float()
				if em.Kind == "counter" {
					value = p.engine.Process(derive.Key{Metric: em.Name, Node: nodeName}, value, now)
				}
				p.emitter.Emit(nodeMetricName(em.Name, nodeName), em.Units, value)
				return true
			})
		}
	}
}

// numeric reports whether a gjson result holds a usable numeric value.
func numeric(r gjson.Result) bool {
	return r.Exists() && r.Type == gjson.Number
}
