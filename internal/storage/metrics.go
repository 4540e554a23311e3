package storage

import "time"

// Metrics records the outcome of store operations
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

type nopMetrics struct{}

func (nopMetrics) Observe(string, error, time.Time) {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
