package elastic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elasticwatch/elasticwatch/internal/config"
)

// clusterStatsBody is a realistic subset of a /_cluster/stats response.
const clusterStatsBody = `{
  "cluster_name": "logging-prod",
  "status": "green",
  "indices": {
    "count": 12,
    "shards": {"total": 48, "primaries": 24, "replication": 1.0},
    "docs": {"count": 2450130, "deleted": 5021},
    "store": {"size_in_bytes": 9832145920, "throttle_time_in_millis": 1200},
    "segments": {"count": 310}
  },
  "nodes": {
    "count": {"total": 3, "master_only": 1, "data_only": 0, "master_data": 2, "client": 0},
    "versions": ["1.4.2", "1.4.2", "1.4.4"]
  }
}`

// nodesStatsBody is a realistic subset of a /_nodes/stats response.
const nodesStatsBody = `{
  "cluster_name": "logging-prod",
  "nodes": {
    "abc123": {
      "name": "es-data-1",
      "indices": {
        "docs": {"count": 1225065, "deleted": 2510},
        "store": {"size_in_bytes": 4916072960, "throttle_time_in_millis": 600},
        "indexing": {"index_total": 500000, "index_time_in_millis": 90000,
                     "delete_total": 1200, "delete_time_in_millis": 300},
        "get": {"total": 88000, "time_in_millis": 4100},
        "search": {"query_total": 320000, "query_time_in_millis": 152000,
                   "fetch_total": 110000, "fetch_time_in_millis": 41000},
        "merges": {"total": 900, "total_time_in_millis": 360000,
                   "total_docs": 2100000, "total_size_in_bytes": 7340032000},
        "refresh": {"total": 41000, "total_time_in_millis": 520000},
        "flush": {"total": 820, "total_time_in_millis": 61000},
        "warmer": {"total": 61000, "total_time_in_millis": 9800},
        "filter_cache": {"memory_size_in_bytes": 104857600, "evictions": 12},
        "id_cache": {"memory_size_in_bytes": 0},
        "fielddata": {"memory_size_in_bytes": 524288000, "evictions": 3},
        "completion": {"size_in_bytes": 2097152},
        "segments": {"count": 155},
        "suggest": {"total": 40, "time_in_millis": 12}
      },
      "os": {
        "load_average": [1.52, 1.33, 1.21],
        "swap": {"used_in_bytes": 1073741824, "free_in_bytes": 3221225472}
      },
      "process": {"open_file_descriptors": 4096, "cpu": {"percent": 23}},
      "jvm": {
        "mem": {"heap_used_percent": 61},
        "gc": {"collectors": {
          "young": {"collection_count": 74000, "collection_time_in_millis": 680000},
          "old": {"collection_count": 130, "collection_time_in_millis": 21000}
        }}
      },
      "thread_pool": {
        "search": {"queue": 0, "completed": 430000},
        "index": {"queue": 2, "completed": 501000},
        "bulk": {"queue": 0, "completed": 88000}
      },
      "fs": {"total": {"disk_read_size_in_bytes": 53687091200, "disk_write_size_in_bytes": 96636764160}},
      "transport": {"server_open": 26, "rx_size_in_bytes": 6442450944, "tx_size_in_bytes": 8589934592},
      "http": {"total_opened": 1420}
    }
  }
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.ElasticsearchConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c, srv
}

func statsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(clusterStatsPath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(clusterStatsBody))
	})
	mux.HandleFunc(nodesStatsPath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(nodesStatsBody))
	})
	return mux
}

func TestClient_ClusterStats(t *testing.T) {
	c, _ := newTestClient(t, statsHandler())

	stats, err := c.ClusterStats(context.Background())
	if err != nil {
		t.Fatalf("ClusterStats() error = %v", err)
	}

	if stats.ClusterName != "logging-prod" {
		t.Errorf("ClusterName = %q, want logging-prod", stats.ClusterName)
	}
	if stats.Indices.Docs.Count != 2450130 {
		t.Errorf("Indices.Docs.Count = %v, want 2450130", stats.Indices.Docs.Count)
	}
	if stats.Indices.Shards.Primaries != 24 {
		t.Errorf("Shards.Primaries = %v, want 24", stats.Indices.Shards.Primaries)
	}
	if stats.Nodes.Count.MasterData != 2 {
		t.Errorf("Nodes.Count.MasterData = %v, want 2", stats.Nodes.Count.MasterData)
	}
	if len(stats.Nodes.Versions) != 3 {
		t.Errorf("Versions len = %d, want 3", len(stats.Nodes.Versions))
	}
	if len(stats.Raw) == 0 {
		t.Error("Raw body not retained")
	}
}

func TestClient_NodesStats(t *testing.T) {
	c, _ := newTestClient(t, statsHandler())

	stats, err := c.NodesStats(context.Background())
	if err != nil {
		t.Fatalf("NodesStats() error = %v", err)
	}

	node, ok := stats.Nodes["abc123"]
	if !ok {
		t.Fatalf("node abc123 missing; got %d nodes", len(stats.Nodes))
	}
	if node.Name != "es-data-1" {
		t.Errorf("node name = %q, want es-data-1", node.Name)
	}
	if node.Indices.Search.QueryTotal != 320000 {
		t.Errorf("QueryTotal = %v, want 320000", node.Indices.Search.QueryTotal)
	}
	if node.JVM.GC.Collectors.Old.CollectionCount != 130 {
		t.Errorf("old GC count = %v, want 130", node.JVM.GC.Collectors.Old.CollectionCount)
	}
	if got := node.OS.LoadAverage; len(got) != 3 || got[0] != 1.52 {
		t.Errorf("LoadAverage = %v, want [1.52 1.33 1.21]", got)
	}
	if node.ThreadPool.Search.Completed != 430000 {
		t.Errorf("search pool completed = %v, want 430000", node.ThreadPool.Search.Completed)
	}
	// Pools absent from the response read as zero.
	if node.ThreadPool.Suggest.Completed != 0 || node.ThreadPool.Suggest.Queue != 0 {
		t.Errorf("absent suggest pool = %+v, want zeros", node.ThreadPool.Suggest)
	}
	if len(stats.Raw) == 0 {
		t.Error("Raw body not retained")
	}
}

func TestClient_ClusterName(t *testing.T) {
	c, _ := newTestClient(t, statsHandler())

	name, err := c.ClusterName(context.Background())
	if err != nil {
		t.Fatalf("ClusterName() error = %v", err)
	}
	if name != "logging-prod" {
		t.Errorf("ClusterName() = %q, want logging-prod", name)
	}
}

func TestClient_NonOKStatus_IsTransportError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "shard failure", http.StatusInternalServerError)
	}))

	_, err := c.ClusterStats(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !IsTransport(err) {
		t.Errorf("error = %v, want TransportError", err)
	}
	if IsParse(err) {
		t.Errorf("error %v should not be a ParseError", err)
	}
}

func TestClient_Unreachable_IsTransportError(t *testing.T) {
	c, err := NewClient(config.ElasticsearchConfig{URL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.NodesStats(context.Background())
	if !IsTransport(err) {
		t.Errorf("error = %v, want TransportError", err)
	}
}

func TestClient_MalformedBody_IsParseError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"cluster_name": "x", "indices": "not-an-object"`))
	}))

	_, err := c.ClusterStats(context.Background())
	if !IsParse(err) {
		t.Errorf("error = %v, want ParseError", err)
	}
}

func TestClient_ShapeMismatch_IsParseError(t *testing.T) {
	// Valid JSON, but not a nodes-stats document.
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"took": 3, "hits": {"total": 0}}`))
	}))

	_, err := c.NodesStats(context.Background())
	if !IsParse(err) {
		t.Errorf("error = %v, want ParseError", err)
	}
}

func TestClient_BasicAuthHeader(t *testing.T) {
	t.Setenv("ES_TEST_PASSWORD", "hunter2")

	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_, _ = w.Write([]byte(clusterStatsBody))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(config.ElasticsearchConfig{
		URL: srv.URL,
		Auth: config.AuthConfig{
			Mode:        "basic",
			Username:    "monitor",
			PasswordEnv: "ES_TEST_PASSWORD",
		},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := c.ClusterStats(context.Background()); err != nil {
		t.Fatalf("ClusterStats() error = %v", err)
	}
	if gotUser != "monitor" || gotPass != "hunter2" {
		t.Errorf("basic auth = %q/%q, want monitor/hunter2", gotUser, gotPass)
	}
}
