package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// operationBuckets covers in-memory lookups (microseconds) up to registry
// round-trips (seconds).
var operationBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5}

// Metrics holds the Prometheus registry, the operation metrics fed by
// ObserveOperation and the HTTP server exposing /metrics.
type Metrics struct {
	// Server serves the registry at /metrics.
	Server *http.Server

	// Registry is the isolated registry every metric of this instance lives in.
	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewMetrics creates a dedicated registry wrapped with the constant
// service label, registers the operation metrics (and the default
// collectors when enabled) and prepares the HTTP server.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "orders"})
//	cache := schemacache.NewSchemaCache(cfg).WithObserver(m)
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}

	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrapped,
		namespace:  cfg.Namespace,
	}

	m.operationsTotal = createCounterVec(cfg.Namespace, "schemacache_operations_total",
		"Total number of schema cache and registry operations", []string{"component", "operation", "result"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "schemacache_operation_duration_seconds",
		"Duration of schema cache and registry operations in seconds", []string{"component", "operation"}, operationBuckets)

	wrapped.MustRegister(m.operationsTotal, m.operationDuration)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}
