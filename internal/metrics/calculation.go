package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CalculationMetrics holds the Prometheus collectors the application layer
// updates after every calculator run. Unlike promauto, construction here never
// touches the default registry: the caller decides whether, and where, to
// register the result of Collectors, matching the "no hidden process-wide
// singletons" rule the rest of this module follows.
type CalculationMetrics struct {
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	thresholdCurrent *prometheus.GaugeVec
}

// NewCalculationMetrics builds an unregistered set of collectors.
func NewCalculationMetrics() *CalculationMetrics {
	return &CalculationMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fibcalc",
			Name:      "calculations_total",
			Help:      "Number of calculator runs, partitioned by algorithm and outcome.",
		}, []string{"algorithm", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fibcalc",
			Name:      "calculation_duration_seconds",
			Help:      "Wall-clock duration of a single calculator run, by algorithm.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"algorithm"}),
		thresholdCurrent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fibcalc",
			Name:      "threshold_bits",
			Help:      "Current crossover threshold in effect, by kind (parallel, fft, strassen).",
		}, []string{"kind"}),
	}
}

// Collectors returns every collector CalculationMetrics owns, for the
// caller to pass to a prometheus.Registerer of its choosing.
func (m *CalculationMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.runsTotal, m.runDuration, m.thresholdCurrent}
}

// ObserveResult records the outcome of one calculator run.
func (m *CalculationMetrics) ObserveResult(algorithm string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runsTotal.WithLabelValues(algorithm, outcome).Inc()
	if err == nil {
		m.runDuration.WithLabelValues(algorithm).Observe(d.Seconds())
	}
}

// SetThresholds updates the live threshold gauges, e.g. after a dynamic
// threshold adjustment or an auto-calibration pass picks new values.
func (m *CalculationMetrics) SetThresholds(parallel, fft, strassen int) {
	m.thresholdCurrent.WithLabelValues("parallel").Set(float64(parallel))
	m.thresholdCurrent.WithLabelValues("fft").Set(float64(fft))
	m.thresholdCurrent.WithLabelValues("strassen").Set(float64(strassen))
}
