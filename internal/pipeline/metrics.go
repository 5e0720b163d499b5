package pipeline

import "github.com/elasticwatch/elasticwatch/internal/elastic"

// Kind classifies how a metric's raw value becomes its emitted value.
type Kind int

const (
	// KindGauge passes the raw point-in-time value through unchanged.
	KindGauge Kind = iota
	// KindCounter derives a per-second rate from successive cumulative
	// samples of the same series.
	KindCounter
)

// clusterMetric maps one /_cluster/stats field to an emitted metric.
type clusterMetric struct {
	name  string
	units string
	kind  Kind
	value func(s *elastic.ClusterStats) float64
}

// nodeMetric maps one per-node /_nodes/stats field to an emitted metric.
// The node name is appended to the metric path at emission time.
type nodeMetric struct {
	name  string
	units string
	kind  Kind
	value func(n *elastic.NodeStats) float64
}

// clusterMetrics is the fixed classification of every cluster-scoped metric.
// Names are wire contract: downstream dashboards key off the exact strings,
// so they never change between releases.
var clusterMetrics = []clusterMetric{
	{"V1/ClusterStats/Indices/Docs/Count", "documents", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Docs.Count }},
	{"V1/ClusterStats/Indices/Docs/Deleted", "documents", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Docs.Deleted }},
	{"V1/ClusterStats/Indices/DocsAdded", "documents/second", KindCounter,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Docs.Count }},

	{"V1/ClusterStats/Nodes/Count/Total", "nodes", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Nodes.Count.Total }},
	{"V1/ClusterStats/Nodes/Count/Master and data", "nodes", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Nodes.Count.MasterData }},
	{"V1/ClusterStats/Nodes/Count/Master only", "nodes", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Nodes.Count.MasterOnly }},
	{"V1/ClusterStats/Nodes/Count/Data only", "nodes", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Nodes.Count.DataOnly }},
	{"V1/ClusterStats/Nodes/Count/Client", "nodes", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Nodes.Count.Client }},

	{"V1/ClusterStats/Indices/Indices", "indices", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Count }},
	{"V1/ClusterStats/Indices/Shards", "shards", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Shards.Total }},
	{"V1/ClusterStats/Indices/Primaries", "shards", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Shards.Primaries }},
	{"V1/ClusterStats/Indices/Replication", "shards", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Shards.Replication }},

	{"V1/ClusterStats/Indices/Segments/Count", "segments", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Segments.Count }},

	{"V1/ClusterStats/Indices/Store/Size", "bytes", KindGauge,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Store.SizeInBytes }},
	{"V1/ClusterStats/Indices/Store/SizePerSec", "bytes/second", KindCounter,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Store.SizeInBytes }},
	{"V1/ClusterStats/Indices/Store/ThrottleTime", "millis", KindCounter,
		func(s *elastic.ClusterStats) float64 { return s.Indices.Store.ThrottleTimeInMillis }},
}

// nodeMetrics is the fixed classification of every node-scoped metric.
// Some derived names historically shipped without the V1/ prefix; the
// inconsistency is part of the wire contract and is kept as-is.
var nodeMetrics = []nodeMetric{
	{"V1/NodeStats/Nodes/Indices/Docs/Count", "documents", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.Docs.Count }},
	{"V1/NodeStats/Indices/Store/Size", "bytes", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.Store.SizeInBytes }},
	{"V1/NodeStats/Indices/Store/SizePerSec", "bytes/second", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Store.SizeInBytes }},
	{"V1/NodeStats/Nodes/Indices/Docs/Deleted", "documents", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.Docs.Deleted }},

	{"V1/NodeStats/Indices/Indexing/Index", "queries", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Indexing.IndexTotal }},
	{"V1/NodeStats/Indices/Indexing/IndexTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Indexing.IndexTimeInMillis }},
	{"V1/NodeStats/Indices/Indexing/DeleteTotal", "queries", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Indexing.DeleteTotal }},
	{"V1/NodeStats/Indices/Indexing/DeleteTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Indexing.DeleteTimeInMillis }},
	{"V1/NodeStats/Indices/Refresh/Total", "refreshes", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Refresh.Total }},
	{"V1/NodeStats/Indices/Refresh/TotalTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Refresh.TotalTimeInMillis }},
	{"V1/NodeStats/Indices/Flush/Total", "flushes", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Flush.Total }},
	{"V1/NodeStats/Indices/Flush/TotalTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Flush.TotalTimeInMillis }},
	{"V1/NodeStats/Indices/Warmer/Total", "queries", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Warmer.Total }},
	{"V1/NodeStats/Indices/Warmer/TotalTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Warmer.TotalTimeInMillis }},

	{"V1/NodeStats/Indices/Search/QueryTotal", "requests", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Search.QueryTotal }},
	{"V1/NodeStats/Indices/Search/QueryTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Search.QueryTimeInMillis }},
	{"V1/NodeStats/Indices/Search/FetchTotal", "requests", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Search.FetchTotal }},
	{"V1/NodeStats/Indices/Search/FetchTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Search.FetchTimeInMillis }},
	{"V1/NodeStats/Indices/Get/Total", "requests", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Get.Total }},
	{"V1/NodeStats/Indices/Get/TimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Get.TimeInMillis }},
	{"V1/NodeStats/Indices/Suggest/Total", "requests", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Suggest.Total }},
	{"V1/NodeStats/Indices/Suggest/TimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Suggest.TimeInMillis }},

	{"V1/NodeStats/Indices/Merges/Total", "merges", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Merges.Total }},
	{"V1/NodeStats/Indices/Merges/TotalSizeInBytes", "bytes/second", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Merges.TotalSizeInBytes }},
	{"V1/NodeStats/Indices/Merges/TotalTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Merges.TotalTimeInMillis }},
	{"V1/NodeStats/Indices/Merges/TotalDocs", "docs", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Merges.TotalDocs }},
	{"V1/NodeStats/Indices/Segments/Count", "segments", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.Segments.Count }},

	{"V1/NodeStats/Indices/FilterCache/Size", "bytes", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.FilterCache.MemorySizeInBytes }},
	{"V1/NodeStats/Indices/FilterCache/Evictions", "evictions", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.FilterCache.Evictions }},
	{"V1/NodeStats/Indices/Fielddata/Size", "bytes", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.Fielddata.MemorySizeInBytes }},
	{"V1/NodeStats/Indices/Fielddata/Evictions", "evictions", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.Fielddata.Evictions }},
	{"V1/NodeStats/Indices/IdCache/Size", "bytes", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.IDCache.MemorySizeInBytes }},
	{"V1/NodeStats/Indices/Completion/Size", "bytes", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Indices.Completion.SizeInBytes }},

	{"V1/NodeStats/Jvm/Mem/HeapUsedPercent", "percent", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.JVM.Mem.HeapUsedPercent }},
	{"V1/NodeStats/Process/Cpu/Percent", "percent", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Process.CPU.Percent }},
	{"NodeStats/Jvm/Gc/Old/CollectionCount", "collections", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.JVM.GC.Collectors.Old.CollectionCount }},
	{"NodeStats/Jvm/Gc/Old/CollectionTime", "milliseconds", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.JVM.GC.Collectors.Old.CollectionTimeInMillis }},
	{"NodeStats/Jvm/Gc/Young/CollectionCount", "collections", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.JVM.GC.Collectors.Young.CollectionCount }},
	{"NodeStats/Jvm/Gc/Young/CollectionTime", "milliseconds", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.JVM.GC.Collectors.Young.CollectionTimeInMillis }},

	{"NodeStats/Fs/Total/DiskReadSizeInBytes", "bytes", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.FS.Total.DiskReadSizeInBytes }},
	{"NodeStats/Fs/Total/DiskWriteSizeInBytes", "bytes", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.FS.Total.DiskWriteSizeInBytes }},
	{"V1/NodeStats/Process/OpenFileDescriptors", "descriptors", KindGauge,
		func(n *elastic.NodeStats) float64 { return n.Process.OpenFileDescriptors }},
	{"NodeStats/Indices/Store/ThrottleTimeInMillis", "ms", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Indices.Store.ThrottleTimeInMillis }},

	{"NodeStats/Transport/ServerOpen", "bytes", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Transport.ServerOpen }},
	{"NodeStats/Http/TotalOpened", "connections", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.HTTP.TotalOpened }},
	{"NodeStats/Transport/TxSizeInBytes", "bytes", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Transport.TxSizeInBytes }},
	{"NodeStats/Transport/RxSizeInBytes", "bytes", KindCounter,
		func(n *elastic.NodeStats) float64 { return n.Transport.RxSizeInBytes }},
}

// computedMetricNames are emitted by dedicated code outside the
// classification tables: the cross-node aggregates and the two per-node
// computed specials.
var computedMetricNames = []string{
	"V1/ClusterStats/NumberOfVersionsInCluster",
	"V1/QueriesStats/Search",
	"V1/QueriesStats/Fetch",
	"V1/QueriesStats/Get",
	"V1/QueriesStats/Index",
	"V1/QueriesStats/Delete",
	"V1/NodeStats/Os/Swap/Percent",
	"V1/NodeStats/Os/LoadAverage",
}

// isBuiltinName reports whether name is already emitted by a built-in
// stage. Extra metrics may not reuse these names: a collision would
// double-emit the series, and for counters feed the same derivation key
// from two call sites.
func isBuiltinName(name string) bool {
	for _, m := range clusterMetrics {
		if m.name == name {
			return true
		}
	}
	for _, m := range nodeMetrics {
		if m.name == name {
			return true
		}
	}
	for _, n := range computedMetricNames {
		if n == name {
			return true
		}
	}
	return false
}

func init() {
	// The ten thread pools all expose the same pair: a cumulative completed
	// counter and a queue-depth gauge.
	pools := []struct {
		label string
		sel   func(n *elastic.NodeStats) *elastic.ThreadPool
	}{
		{"Search", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Search }},
		{"Index", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Index }},
		{"Bulk", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Bulk }},
		{"Get", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Get }},
		{"Merge", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Merge }},
		{"Suggest", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Suggest }},
		{"Warmer", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Warmer }},
		{"Flush", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Flush }},
		{"Refresh", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Refresh }},
		{"Generic", func(n *elastic.NodeStats) *elastic.ThreadPool { return &n.ThreadPool.Generic }},
	}
	for _, p := range pools {
		sel := p.sel
		nodeMetrics = append(nodeMetrics,
			nodeMetric{"NodeStats/ThreadPool/" + p.label + "/Completed", "threads", KindCounter,
				func(n *elastic.NodeStats) float64 { return sel(n).Completed }},
			nodeMetric{"V1/NodeStats/ThreadPool/" + p.label + "/Queue", "threads", KindGauge,
				func(n *elastic.NodeStats) float64 { return sel(n).Queue }},
		)
	}
}
