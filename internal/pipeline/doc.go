// Package pipeline orchestrates one poll cycle: fetch both statistics
// snapshots, compute cross-node aggregates, derive per-second rates for
// cumulative counters, and emit the resulting metrics.
//
// metrics.go holds the closed classification tables — every built-in metric
// name is mapped once to a Kind (gauge or counter) and a field extractor, so
// the emission loops stay uniform. The two computed specials (swap-used
// ratio, load average) live in the node reporting stage; config-defined
// extra metrics (extra.go) are extracted from the raw bodies by gjson path.
//
// Failure policy: a TransportError or ParseError from either fetch aborts
// the cycle before any emission and leaves the derivation engine's counter
// baselines untouched. Overlapping ticks are skipped via TryLock so counter
// state is only ever mutated by one cycle at a time.
package pipeline
