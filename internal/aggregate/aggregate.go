package aggregate

import "github.com/elasticwatch/elasticwatch/internal/elastic"

// QueryTotals holds the cluster-wide sum of each query counter across all
// reporting nodes.
type QueryTotals struct {
	Search float64
	Fetch  float64
	Get    float64
	Index  float64
	Delete float64
}

// DistinctVersionCount counts the unique Elasticsearch versions among
// reporting nodes. Duplicates count once; a nil snapshot or empty version
// list yields 0.
func DistinctVersionCount(stats *elastic.ClusterStats) int {
	if stats == nil {
		return 0
	}
	seen := make(map[string]struct{}, len(stats.Nodes.Versions))
	for _, v := range stats.Nodes.Versions {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// TotalQueries sums the search, fetch, get, index and delete counters across
// every node in the snapshot. A node missing a field contributes 0 for it;
// an empty node map yields an all-zero result.
func TotalQueries(stats *elastic.NodesStats) QueryTotals {
	var totals QueryTotals
	if stats == nil {
		return totals
	}
	for _, node := range stats.Nodes {
		totals.Search += node.Indices.Search.QueryTotal
		totals.Fetch += node.Indices.Search.FetchTotal
		totals.Get += node.Indices.Get.Total
		totals.Index += node.Indices.Indexing.IndexTotal
		totals.Delete += node.Indices.Indexing.DeleteTotal
	}
	return totals
}
