package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestStoreRecords(t *testing.T) {
	m := NewStore()
	start := time.Now().Add(-time.Millisecond)

	if inc := delta(t, storeOperationsTotal.WithLabelValues("get_output", "success"), func() {
		m.Observe("get_output", nil, start)
	}); inc != 1 {
		t.Fatalf("expected success counter increment, got %v", inc)
	}

	if inc := delta(t, storeOperationsTotal.WithLabelValues("update_outputs", "error"), func() {
		m.Observe("update_outputs", errors.New("boom"), start)
	}); inc != 1 {
		t.Fatalf("expected error counter increment, got %v", inc)
	}
}

func TestObserveHTTP(t *testing.T) {
	start := time.Now()

	if inc := delta(t, httpRequestsTotal.WithLabelValues("GET", "/api/v1/outputs/:hash", "404"), func() {
		ObserveHTTP("GET", "/api/v1/outputs/:hash", 404, start)
	}); inc != 1 {
		t.Fatalf("expected request counter increment, got %v", inc)
	}

	if inc := delta(t, httpRequestsTotal.WithLabelValues("GET", "unknown", "404"), func() {
		ObserveHTTP("GET", "", 404, start)
	}); inc != 1 {
		t.Fatalf("expected unknown route counter increment, got %v", inc)
	}
}
