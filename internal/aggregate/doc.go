// Package aggregate computes cross-node summaries from a single snapshot:
// values no individual stats field carries, such as version diversity and
// cluster-wide query totals. All functions are pure — recomputed fully each
// poll cycle with no stored state.
package aggregate
