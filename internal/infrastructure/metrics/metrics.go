package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/datacollector/internal/person"
)

// Metrics holds the Prometheus collectors for the people store and API.
type Metrics struct {
	registry *prometheus.Registry

	// Store calls by operation and outcome
	StoreOperations *prometheus.CounterVec

	// Store call latency by operation
	StoreLatency *prometheus.HistogramVec

	// Rows in the people table, refreshed by the caller
	People prometheus.Gauge

	// Person change events by type
	Events *prometheus.CounterVec

	// Connected websocket clients
	WebSocketClients prometheus.Gauge
}

var (
	_ person.MetricsRecorder = (*Metrics)(nil)
	_ person.Notifier        = (*Metrics)(nil)
)

// New creates a Metrics instance on its own registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,

		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "datacollector_store_operations_total",
			Help: "Total people store operations by operation and status",
		}, []string{"operation", "status"}), // status: "ok", "error"

		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "datacollector_store_operation_duration_seconds",
			Help:    "Duration of people store operations",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"operation"}),

		People: factory.NewGauge(prometheus.GaugeOpts{
			Name: "datacollector_people",
			Help: "Number of people currently stored",
		}),

		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "datacollector_person_events_total",
			Help: "Total person change events by type",
		}, []string{"type"}),

		WebSocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "datacollector_websocket_clients",
			Help: "Number of connected websocket clients",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordOperation implements person.MetricsRecorder.
func (m *Metrics) RecordOperation(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreOperations.WithLabelValues(op, status).Inc()
	m.StoreLatency.WithLabelValues(op).Observe(d.Seconds())
}

// Notify implements person.Notifier and keeps the people gauge in step
// with creates and deletes.
func (m *Metrics) Notify(e person.Event) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(string(e.Type)).Inc()
	switch e.Type {
	case person.EventCreated:
		m.People.Inc()
	case person.EventDeleted:
		m.People.Dec()
	}
}

// SetPeople sets the people gauge to an absolute count.
func (m *Metrics) SetPeople(n int) {
	if m != nil {
		m.People.Set(float64(n))
	}
}

// SetWebSocketClients records the number of connected websocket clients.
func (m *Metrics) SetWebSocketClients(n int) {
	if m != nil {
		m.WebSocketClients.Set(float64(n))
	}
}
