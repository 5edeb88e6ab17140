// Package metric provides Prometheus metrics for memory resources.
//
// Instrument decorates a memory resource so every allocation and
// deallocation updates counters, a bytes-in-use gauge, and a request-size
// histogram. Metrics register on a caller-supplied prometheus.Registerer
// and carry the resource name as a constant label, so several instrumented
// resources can share one registry.
package metric
