package app

import (
	"errors"
	"testing"
	"time"

	"github.com/agbruneau/fibcore/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestApplicationMetrics_RegistersCleanly(t *testing.T) {
	t.Parallel()

	m := metrics.NewCalculationMetrics()
	a := &Application{Metrics: m}

	reg := prometheus.NewRegistry()
	reg.MustRegister(a.Metrics.Collectors()...)

	a.Metrics.SetThresholds(4096, 500000, 3072)
	a.Metrics.ObserveResult("fast-doubling", 5*time.Millisecond, nil)
	a.Metrics.ObserveResult("matrix-exponentiation", 7*time.Millisecond, errors.New("boom"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}
