package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus registry, the built-in schemacache series and
// the HTTP server exposing them.
type Metrics struct {
	// Server serves the registry on /metrics.
	Server *http.Server

	// Registry is private to this Metrics instance.
	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	fetchSize         *prometheus.HistogramVec
	reloadsSkipped    *prometheus.CounterVec
}

// NewMetrics creates the registry, registers the schemacache series (and the
// default collectors when enabled) and prepares, but does not start, the HTTP
// server.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    ServiceName:             "schema-consumer",
//	    EnableDefaultCollectors: true,
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
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

	m.operationsTotal = createCounterVec(cfg.Namespace, "operations_total",
		"Total number of schemacache operations", []string{"component", "operation", "status"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "operation_duration_seconds",
		"Duration of schemacache operations in seconds", []string{"component", "operation", "status"}, prometheus.DefBuckets)
	m.fetchSize = createHistogramVec(cfg.Namespace, "fetch_size_bytes",
		"Size of fetched descriptor payloads in bytes", []string{"component"}, prometheus.ExponentialBuckets(1024, 4, 8))
	m.reloadsSkipped = createCounterVec(cfg.Namespace, "reloads_skipped_total",
		"Background reloads dropped because the reload queue was full", []string{"component"})

	wrapped.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.fetchSize,
		m.reloadsSkipped,
	)

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
