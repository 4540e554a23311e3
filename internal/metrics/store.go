package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ord_store",
		Subsystem: "storage",
		Name:      "operations_total",
		Help:      "Count of storage operations.",
	}, []string{"operation", "status"})
	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ord_store",
		Subsystem: "storage",
		Name:      "operation_duration_seconds",
		Help:      "Duration of storage operations.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation", "status"})
)

// Store tracks metrics for storage operations.
type Store struct{}

// NewStore creates a Store metrics collector.
func NewStore() *Store {
	return &Store{}
}

// Observe records duration and status of a storage operation.
func (Store) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	storeOperationsTotal.WithLabelValues(operation, status).Inc()
	storeOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
