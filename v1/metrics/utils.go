package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var _ observability.Observer = (*Metrics)(nil)

// ObserveOperation records one operation report.
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	if ctx.Operation == observability.OperationReloadSkipped {
		m.reloadsSkipped.WithLabelValues(ctx.Component).Inc()
		return
	}

	status := statusSuccess
	if ctx.Error != nil {
		status = statusError
	}
	m.operationsTotal.WithLabelValues(ctx.Component, ctx.Operation, status).Inc()
	m.operationDuration.WithLabelValues(ctx.Component, ctx.Operation, status).Observe(ctx.Duration.Seconds())

	if ctx.Operation == "fetch" && ctx.Error == nil {
		m.fetchSize.WithLabelValues(ctx.Component).Observe(float64(ctx.Size))
	}
}

// CreateCounter registers a CounterVec in the namespace of this instance.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
