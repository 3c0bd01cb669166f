package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_operations_total",
			Help:      "Total number of search operations by name",
		},
		[]string{"operation"},
	)

	SearchOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_operation_duration_seconds",
			Help:      "Search operation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics(reg prometheus.Registerer) {
	if searchMetricsRegistered {
		return
	}
	reg.MustRegister(SearchOperationsTotal)
	reg.MustRegister(SearchOperationDuration)
	searchMetricsRegistered = true
}

// PrometheusSink bridges operation records into the Prometheus collectors.
type PrometheusSink struct{}

var _ Sink = PrometheusSink{}

func (PrometheusSink) RecordOperation(name string, duration time.Duration) {
	SearchOperationsTotal.WithLabelValues(name).Inc()
	SearchOperationDuration.WithLabelValues(name).Observe(duration.Seconds())
}
