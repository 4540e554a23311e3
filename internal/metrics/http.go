package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ord_store",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of HTTP requests.",
	}, []string{"method", "route", "code"})
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ord_store",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

// ObserveHTTP records duration and status code of a request. Unmatched
// routes are reported as "unknown" to keep label cardinality bounded.
func ObserveHTTP(method, route string, code int, started time.Time) {
	if route == "" {
		route = "unknown"
	}
	c := strconv.Itoa(code)
	httpRequestsTotal.WithLabelValues(method, route, c).Inc()
	httpRequestDuration.WithLabelValues(method, route, c).Observe(time.Since(started).Seconds())
}
