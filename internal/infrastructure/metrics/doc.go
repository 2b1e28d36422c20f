// Package metrics exposes Prometheus metrics for the people store.
//
// Metrics implements both person.MetricsRecorder and person.Notifier, so a
// single instance registered on the Service counts every store call, its
// latency, and every change event. Collectors live on a private registry
// served by Handler at metrics.path (default /metrics/prometheus).
package metrics
