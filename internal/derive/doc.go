// Package derive turns ever-increasing cumulative counters into per-second
// rates.
//
// Engine keeps one (value, timestamp) baseline per Key{Metric, Node} and
// derives each rate from the delta against that baseline. The table lives
// for the process lifetime; nothing is persisted, so the first sample after
// a restart is necessarily a zero-rate baseline. Counter resets and
// non-positive elapsed times resolve to 0 — rate computation is a total
// function with no error path.
//
// Engine.Process accepts an injectable time.Time so tests are deterministic.
package derive
