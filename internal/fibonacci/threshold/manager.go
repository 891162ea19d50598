// This file implements dynamic threshold adjustment during calculation.

package threshold

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dynamic Threshold Configuration
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DynamicAdjustmentInterval is the number of iterations between threshold checks.
	DynamicAdjustmentInterval = 5

	// MinMetricsForAdjustment is the minimum number of metrics needed before adjusting.
	MinMetricsForAdjustment = 3

	// MaxMetricsHistory is the maximum number of metrics to keep for analysis.
	MaxMetricsHistory = 32

	// FFTSpeedupThreshold is the minimum speedup ratio to switch to FFT.
	// If FFT is expected to be at least this much faster, switch to it.
	FFTSpeedupThreshold = 1.2

	// ParallelSpeedupThreshold is the minimum speedup to enable parallelism.
	ParallelSpeedupThreshold = 1.1

	// StrassenSpeedupThreshold is the minimum speedup to prefer Strassen's
	// matrix multiplication over the classic/symmetric formula.
	StrassenSpeedupThreshold = 1.1

	// MinFFTThreshold is the floor below which the FFT threshold never drops,
	// regardless of how favorable observed timings are.
	MinFFTThreshold = 1024

	// MinParallelThreshold is the floor below which the parallel threshold
	// never drops.
	MinParallelThreshold = 512

	// MinStrassenThreshold is the floor below which the Strassen threshold
	// never drops.
	MinStrassenThreshold = 512

	// DeadZone is the minimum relative change (as a fraction of the current
	// threshold) below which a proposed adjustment is treated as noise and
	// discarded outright, before the hysteresis check below even applies.
	DeadZone = 0.02

	// HysteresisFactor is the minimum relative change required, on top of
	// DeadZone, to actually commit an adjustment. Keeping a gap between
	// DeadZone and HysteresisFactor absorbs measurement jitter without
	// making the manager flip back and forth across a single boundary.
	HysteresisFactor = 0.05

	// MaxAdjustment caps how much a single adjustment pass may move a
	// threshold, as a fraction of its current value, so one noisy batch of
	// metrics can't swing a threshold across several orders of magnitude in
	// one step.
	MaxAdjustment = 0.10
)

// DynamicThresholdManager adjusts the FFT, parallel, and Strassen thresholds
// during calculation based on observed performance metrics.
type DynamicThresholdManager struct {
	mu     sync.RWMutex
	logger zerolog.Logger

	// Current thresholds (can be adjusted during calculation)
	currentFFTThreshold      int
	currentParallelThreshold int
	currentStrassenThreshold int

	// Original thresholds (for comparison and bounds)
	originalFFTThreshold      int
	originalParallelThreshold int
	originalStrassenThreshold int

	// Collected metrics - implemented as a Ring Buffer for O(1) ops
	metrics      [MaxMetricsHistory]IterationMetric
	metricsCount int // Total metrics collected (ever)
	metricsHead  int // Index of the next slot to write to

	// Adjustment state
	iterationCount     int
	adjustmentInterval int
	lastAdjustment     time.Time
}

// ─────────────────────────────────────────────────────────────────────────────
// Constructor and Configuration
// ─────────────────────────────────────────────────────────────────────────────

// NewDynamicThresholdManager creates a new manager with the given initial thresholds.
func NewDynamicThresholdManager(fftThreshold, parallelThreshold, strassenThreshold int) *DynamicThresholdManager {
	return &DynamicThresholdManager{
		logger:                    zerolog.Nop(),
		currentFFTThreshold:       fftThreshold,
		currentParallelThreshold:  parallelThreshold,
		currentStrassenThreshold:  strassenThreshold,
		originalFFTThreshold:      fftThreshold,
		originalParallelThreshold: parallelThreshold,
		originalStrassenThreshold: strassenThreshold,
		adjustmentInterval:        DynamicAdjustmentInterval,
	}
}

// NewDynamicThresholdManagerFromConfig creates a manager from configuration.
func NewDynamicThresholdManagerFromConfig(cfg DynamicThresholdConfig) *DynamicThresholdManager {
	if !cfg.Enabled {
		return nil
	}

	interval := cfg.AdjustmentInterval
	if interval <= 0 {
		interval = DynamicAdjustmentInterval
	}

	return &DynamicThresholdManager{
		logger:                    zerolog.Nop(),
		currentFFTThreshold:       cfg.InitialFFTThreshold,
		currentParallelThreshold:  cfg.InitialParallelThreshold,
		currentStrassenThreshold:  cfg.InitialStrassenThreshold,
		originalFFTThreshold:      cfg.InitialFFTThreshold,
		originalParallelThreshold: cfg.InitialParallelThreshold,
		originalStrassenThreshold: cfg.InitialStrassenThreshold,
		adjustmentInterval:        interval,
	}
}

// SetLogger configures the logger for threshold adjustment events.
func (m *DynamicThresholdManager) SetLogger(l zerolog.Logger) {
	m.logger = l
}

// ─────────────────────────────────────────────────────────────────────────────
// Metric Recording
// ─────────────────────────────────────────────────────────────────────────────

// RecordIteration records timing data for a completed iteration.
// This should be called after each doubling/matrix step in the algorithm.
func (m *DynamicThresholdManager) RecordIteration(bitLen int, duration time.Duration, usedFFT, usedParallel, usedStrassen bool) {
	metric := IterationMetric{
		BitLen:       bitLen,
		Duration:     duration,
		UsedFFT:      usedFFT,
		UsedParallel: usedParallel,
		UsedStrassen: usedStrassen,
	}

	// Write to ring buffer under the lock the getters share
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics[m.metricsHead] = metric
	m.metricsHead = (m.metricsHead + 1) % MaxMetricsHistory
	m.metricsCount++
	m.iterationCount++
}

// ─────────────────────────────────────────────────────────────────────────────
// Threshold Access
// ─────────────────────────────────────────────────────────────────────────────

// GetThresholds returns the current FFT, parallel, and Strassen thresholds.
func (m *DynamicThresholdManager) GetThresholds() (fft, parallel, strassen int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentFFTThreshold, m.currentParallelThreshold, m.currentStrassenThreshold
}

// GetFFTThreshold returns the current FFT threshold.
func (m *DynamicThresholdManager) GetFFTThreshold() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentFFTThreshold
}

// GetParallelThreshold returns the current parallel threshold.
func (m *DynamicThresholdManager) GetParallelThreshold() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentParallelThreshold
}

// GetStrassenThreshold returns the current Strassen threshold.
func (m *DynamicThresholdManager) GetStrassenThreshold() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentStrassenThreshold
}

// ─────────────────────────────────────────────────────────────────────────────
// Adjustment Logic
// ─────────────────────────────────────────────────────────────────────────────

// ShouldAdjust checks if thresholds should be adjusted based on collected
// metrics. Returns the new thresholds and whether an adjustment was made.
// It holds the manager's lock for the whole evaluation.
func (m *DynamicThresholdManager) ShouldAdjust() (newFFT, newParallel, newStrassen int, adjusted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Check if we should evaluate adjustments
	if m.iterationCount%m.adjustmentInterval != 0 {
		return m.currentFFTThreshold, m.currentParallelThreshold, m.currentStrassenThreshold, false
	}

	if m.metricsCount < MinMetricsForAdjustment {
		return m.currentFFTThreshold, m.currentParallelThreshold, m.currentStrassenThreshold, false
	}

	// Analyze recent metrics to determine if adjustments are beneficial
	newFFT = m.analyzeFFTThreshold()
	newParallel = m.analyzeParallelThreshold()
	newStrassen = m.analyzeStrassenThreshold()

	// Check if changes clear the dead zone and hysteresis gap together.
	fftChanged := m.significantChange(m.currentFFTThreshold, newFFT)
	parallelChanged := m.significantChange(m.currentParallelThreshold, newParallel)
	strassenChanged := m.significantChange(m.currentStrassenThreshold, newStrassen)

	if fftChanged || parallelChanged || strassenChanged {
		oldFFT := m.currentFFTThreshold
		oldParallel := m.currentParallelThreshold
		oldStrassen := m.currentStrassenThreshold
		if fftChanged {
			m.currentFFTThreshold = newFFT
		}
		if parallelChanged {
			m.currentParallelThreshold = newParallel
		}
		if strassenChanged {
			m.currentStrassenThreshold = newStrassen
		}
		m.lastAdjustment = time.Now()
		m.logger.Debug().
			Int("iteration", m.iterationCount).
			Bool("fft_changed", fftChanged).
			Int("fft_old", oldFFT).
			Int("fft_new", m.currentFFTThreshold).
			Bool("parallel_changed", parallelChanged).
			Int("parallel_old", oldParallel).
			Int("parallel_new", m.currentParallelThreshold).
			Bool("strassen_changed", strassenChanged).
			Int("strassen_old", oldStrassen).
			Int("strassen_new", m.currentStrassenThreshold).
			Msg("thresholds adjusted")
		return m.currentFFTThreshold, m.currentParallelThreshold, m.currentStrassenThreshold, true
	}

	return m.currentFFTThreshold, m.currentParallelThreshold, m.currentStrassenThreshold, false
}

// getActiveMetrics returns a slice of valid metrics from the ring buffer.
func (m *DynamicThresholdManager) getActiveMetrics() []IterationMetric {
	count := m.metricsCount
	if count > MaxMetricsHistory {
		count = MaxMetricsHistory
	}

	// Create a temporary slice to make analysis easier without complex ring buffer arithmetic
	// Since MaxMetricsHistory is small (32), this copy is cheap and simplifies logic.
	result := make([]IterationMetric, count)

	if m.metricsCount <= MaxMetricsHistory {
		copy(result, m.metrics[:count])
	} else {
		// Buffer wrapped around. Order doesn't matter for averages, so just
		// copy the whole array rather than unwinding head/tail arithmetic.
		copy(result, m.metrics[:])
	}
	return result
}

// thresholdAnalysisParams captures the per-threshold configuration differences
// used by analyzeThreshold to avoid duplicated analysis logic.
type thresholdAnalysisParams struct {
	// predicate selects which metrics belong to the "optimized" mode (FFT,
	// parallel, or Strassen).
	predicate func(IterationMetric) bool
	// speedupThreshold is the minimum ratio to consider the optimized mode faster.
	speedupThreshold float64
	// minThreshold is the floor for the threshold value.
	minThreshold int
	// currentThreshold and originalThreshold are the values being analyzed.
	currentThreshold  int
	originalThreshold int
}

// filterMetricsByMode partitions metrics into two groups based on the predicate.
// Returns (matching, non-matching) slices.
func filterMetricsByMode(metrics []IterationMetric, predicate func(IterationMetric) bool) (matching, nonMatching []IterationMetric) {
	matching = make([]IterationMetric, 0, len(metrics))
	nonMatching = make([]IterationMetric, 0, len(metrics))
	for _, metric := range metrics {
		if predicate(metric) {
			matching = append(matching, metric)
		} else {
			nonMatching = append(nonMatching, metric)
		}
	}
	return matching, nonMatching
}

// calculateSpeedupRatio returns the speedup ratio of baseline over optimized.
// Returns 0 if either average is non-positive.
func calculateSpeedupRatio(avgOptimized, avgBaseline float64) float64 {
	if avgOptimized <= 0 || avgBaseline <= 0 {
		return 0
	}
	return avgBaseline / avgOptimized
}

// analyzeThreshold is the common analysis logic shared by the FFT, parallel,
// and Strassen threshold analyses. It partitions metrics, computes a speedup
// ratio from the plain arithmetic mean of each group's time-per-bit, and
// returns an adjusted threshold bounded by MaxAdjustment per pass and
// minThreshold at the floor.
func (m *DynamicThresholdManager) analyzeThreshold(params thresholdAnalysisParams) int {
	metrics := m.getActiveMetrics()
	if len(metrics) == 0 {
		return params.currentThreshold
	}

	optimized, baseline := filterMetricsByMode(metrics, params.predicate)
	if len(optimized) == 0 || len(baseline) == 0 {
		return params.currentThreshold
	}

	ratio := calculateSpeedupRatio(m.avgTimePerBit(optimized), m.avgTimePerBit(baseline))
	if ratio == 0 {
		return params.currentThreshold
	}

	return m.applyThresholdAdjustment(ratio, params)
}

// applyThresholdAdjustment applies the lower/raise logic based on the
// speedup ratio, capping the move at MaxAdjustment of the current value and
// never crossing minThreshold.
func (m *DynamicThresholdManager) applyThresholdAdjustment(ratio float64, params thresholdAnalysisParams) int {
	if ratio > params.speedupThreshold {
		// Optimized mode is faster: lower the threshold so more work
		// qualifies for it next time.
		newThreshold := params.currentThreshold - int(float64(params.currentThreshold)*MaxAdjustment)
		if newThreshold < params.minThreshold {
			newThreshold = params.minThreshold
		}
		return newThreshold
	}
	if ratio < 1.0/params.speedupThreshold {
		// Optimized mode is slower: raise the threshold so less work
		// qualifies for it next time.
		return params.currentThreshold + int(float64(params.currentThreshold)*MaxAdjustment)
	}
	return params.currentThreshold
}

// analyzeFFTThreshold analyzes metrics to determine optimal FFT threshold.
func (m *DynamicThresholdManager) analyzeFFTThreshold() int {
	return m.analyzeThreshold(thresholdAnalysisParams{
		predicate:         func(metric IterationMetric) bool { return metric.UsedFFT },
		speedupThreshold:  FFTSpeedupThreshold,
		minThreshold:      MinFFTThreshold,
		currentThreshold:  m.currentFFTThreshold,
		originalThreshold: m.originalFFTThreshold,
	})
}

// analyzeParallelThreshold analyzes metrics to determine optimal parallel threshold.
func (m *DynamicThresholdManager) analyzeParallelThreshold() int {
	return m.analyzeThreshold(thresholdAnalysisParams{
		predicate:         func(metric IterationMetric) bool { return metric.UsedParallel },
		speedupThreshold:  ParallelSpeedupThreshold,
		minThreshold:      MinParallelThreshold,
		currentThreshold:  m.currentParallelThreshold,
		originalThreshold: m.originalParallelThreshold,
	})
}

// analyzeStrassenThreshold analyzes metrics to determine optimal Strassen
// threshold. Strassen trades fewer multiplications for more additions, so
// on hardware (or matrix shapes) where that trade doesn't pay off, this
// consistently raises the threshold back up rather than ever lowering it
// much below its floor.
func (m *DynamicThresholdManager) analyzeStrassenThreshold() int {
	return m.analyzeThreshold(thresholdAnalysisParams{
		predicate:         func(metric IterationMetric) bool { return metric.UsedStrassen },
		speedupThreshold:  StrassenSpeedupThreshold,
		minThreshold:      MinStrassenThreshold,
		currentThreshold:  m.currentStrassenThreshold,
		originalThreshold: m.originalStrassenThreshold,
	})
}

// avgTimePerBit calculates average time per bit across metrics.
func (m *DynamicThresholdManager) avgTimePerBit(metrics []IterationMetric) float64 {
	if len(metrics) == 0 {
		return 0
	}

	var totalTime time.Duration
	var totalBits int64
	for _, metric := range metrics {
		totalTime += metric.Duration
		totalBits += int64(metric.BitLen)
	}

	if totalBits == 0 {
		return 0
	}

	return float64(totalTime.Nanoseconds()) / float64(totalBits)
}

// significantChange reports whether a proposed threshold change clears both
// the dead zone (below which it's noise) and the hysteresis gap (below
// which it's allowed to be noise-sized but not yet worth committing).
func (m *DynamicThresholdManager) significantChange(oldVal, newVal int) bool {
	if oldVal == 0 {
		return newVal != 0
	}
	change := float64(newVal-oldVal) / float64(oldVal)
	if change < 0 {
		change = -change
	}
	if change < DeadZone {
		return false
	}
	return change >= DeadZone+HysteresisFactor
}

// ─────────────────────────────────────────────────────────────────────────────
// Statistics and Reporting
// ─────────────────────────────────────────────────────────────────────────────

// GetStats returns current statistics about the manager.
func (m *DynamicThresholdManager) GetStats() ThresholdStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := m.metricsCount
	if count > MaxMetricsHistory {
		count = MaxMetricsHistory
	}

	return ThresholdStats{
		CurrentFFT:          m.currentFFTThreshold,
		CurrentParallel:     m.currentParallelThreshold,
		CurrentStrassen:     m.currentStrassenThreshold,
		OriginalFFT:         m.originalFFTThreshold,
		OriginalParallel:    m.originalParallelThreshold,
		OriginalStrassen:    m.originalStrassenThreshold,
		MetricsCollected:    count,
		IterationsProcessed: m.iterationCount,
	}
}

// Reset clears all collected metrics and restores original thresholds.
func (m *DynamicThresholdManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentFFTThreshold = m.originalFFTThreshold
	m.currentParallelThreshold = m.originalParallelThreshold
	m.currentStrassenThreshold = m.originalStrassenThreshold
	// Ring buffer reset is simple
	m.metricsCount = 0
	m.metricsHead = 0
	m.iterationCount = 0
}
