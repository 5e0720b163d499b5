// Package emitter delivers derived metrics to the outside world.
//
// HTTP buffers metrics in a bounded channel (oldest evicted on overflow) and
// POSTs JSON batches to the monitoring backend from a background Run loop
// with truncated exponential backoff; delivery failures are this package's
// concern and never reach the pipeline.
//
// PromExport keeps a TTL-bounded latest-value registry and serves it in
// Prometheus text exposition format for sidecar scraping.
//
// Multi fans out to several emitters; Log writes metrics to the debug log.
package emitter
