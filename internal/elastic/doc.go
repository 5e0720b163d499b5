// Package elastic fetches statistics snapshots from an Elasticsearch
// cluster's stats endpoints and decodes them into typed trees.
//
// Client wraps a single pre-configured *http.Client (auth headers via the
// shared authRoundTripper, optional TLS settings) and exposes two fetches
// per poll cycle: ClusterStats (/_cluster/stats) and NodesStats
// (/_nodes/stats). Failures are classified as *TransportError (unreachable,
// timeout, non-2xx) or *ParseError (body does not match the expected shape)
// so the pipeline can abort a cycle cleanly without touching counter state.
//
// Snapshots are immutable once returned; every cycle produces fresh ones.
package elastic
