// Package metrics provides Prometheus metrics for the metalab
// analytics service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "metalab"
)

// Manager holds all Prometheus collectors for the service.
type Manager struct {
	registry *prometheus.Registry

	// HTTP performance
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Analytics engine
	computeDuration  *prometheus.HistogramVec
	computeErrors    *prometheus.CounterVec
	snapshotRows     *prometheus.GaugeVec
	repositoryErrors prometheus.Counter
}

// NewManager creates a Manager with its own registry.
func NewManager() *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method"})

	m.computeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "compute_duration_seconds",
		Help:      "Duration of analytics computations by component.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"component"})

	m.computeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compute_errors_total",
		Help:      "Failed analytics computations by component.",
	}, []string{"component"})

	m.snapshotRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshot_rows",
		Help:      "Row counts of the most recently fetched working set by table.",
	}, []string{"table"})

	m.repositoryErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "repository_errors_total",
		Help:      "Result-store query failures.",
	})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpRequestDuration,
		m.computeDuration,
		m.computeErrors,
		m.snapshotRows,
		m.repositoryErrors,
	)
	return m
}

// Registry exposes the manager's registry for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

var defaultManager = NewManager()

// GetRegistry returns the default manager's registry.
func GetRegistry() *prometheus.Registry { return defaultManager.Registry() }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveHTTPDuration records one HTTP request's latency.
func ObserveHTTPDuration(endpoint, method string, d time.Duration) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

// ObserveCompute records the duration of one analytics computation.
func ObserveCompute(component string, d time.Duration) {
	defaultManager.computeDuration.WithLabelValues(component).Observe(d.Seconds())
}

// RecordComputeError counts one failed computation.
func RecordComputeError(component string) {
	defaultManager.computeErrors.WithLabelValues(component).Inc()
}

// SetSnapshotRows sets the working-set row gauge for a table.
func SetSnapshotRows(table string, n int) {
	defaultManager.snapshotRows.WithLabelValues(table).Set(float64(n))
}

// RecordRepositoryError counts one result-store failure.
func RecordRepositoryError() {
	defaultManager.repositoryErrors.Inc()
}
