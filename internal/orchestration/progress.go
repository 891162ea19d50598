package orchestration

import (
	"sync"
	"time"

	"github.com/agbruneau/fibcore/internal/progress"
)

// ProgressAggregator tracks per-calculator progress fractions and derives a
// combined average plus a smoothed ETA, so the orchestrator's caller can
// show one status line for however many calculators are running side by
// side rather than one per algorithm.
type ProgressAggregator struct {
	mu             sync.Mutex
	perCalculator  []float64
	numCalculators int
	startTime      time.Time
	lastSample     time.Time
	lastAverage    float64
	progressRate   float64 // fraction of total work completed per second, EWMA-smoothed
}

// NewProgressAggregator creates a new aggregator for the given number of
// calculators. Returns nil if numCalculators <= 0.
func NewProgressAggregator(numCalculators int) *ProgressAggregator {
	if numCalculators <= 0 {
		return nil
	}
	now := time.Now()
	return &ProgressAggregator{
		perCalculator:  make([]float64, numCalculators),
		numCalculators: numCalculators,
		startTime:      now,
		lastSample:     now,
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	// CalcIndex is the index of the calculator that sent the update.
	CalcIndex int
	// Value is the raw progress value from the update (0.0 to 1.0).
	Value float64
	// AverageProgress is the aggregated average across all calculators.
	AverageProgress float64
	// ETA is the estimated time remaining based on smoothed progress rate.
	ETA time.Duration
}

// Update processes a single progress update and returns the aggregated
// result, updating the smoothed rate used by GetETA.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	a.mu.Lock()
	defer a.mu.Unlock()

	if update.CalcIndex >= 0 && update.CalcIndex < len(a.perCalculator) {
		a.perCalculator[update.CalcIndex] = clampUnit(update.Value)
	}
	avg := a.averageLocked()

	now := time.Now()
	if elapsed := now.Sub(a.lastSample).Seconds(); elapsed > 0 {
		instantRate := (avg - a.lastAverage) / elapsed
		// Exponential moving average smooths out individual bursty updates.
		const smoothing = 0.3
		a.progressRate = smoothing*instantRate + (1-smoothing)*a.progressRate
	}
	a.lastSample = now
	a.lastAverage = avg

	return AggregatedProgress{
		CalcIndex:       update.CalcIndex,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             a.etaLocked(avg),
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.averageLocked()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.etaLocked(a.averageLocked())
}

// NumCalculators returns the number of calculators being tracked.
func (a *ProgressAggregator) NumCalculators() int {
	return a.numCalculators
}

// IsMultiCalculator returns true if tracking more than one calculator.
func (a *ProgressAggregator) IsMultiCalculator() bool {
	return a.numCalculators > 1
}

func (a *ProgressAggregator) averageLocked() float64 {
	if len(a.perCalculator) == 0 {
		return 0
	}
	var sum float64
	for _, v := range a.perCalculator {
		sum += v
	}
	return sum / float64(len(a.perCalculator))
}

func (a *ProgressAggregator) etaLocked(avg float64) time.Duration {
	if a.progressRate <= 0 || avg >= 1 {
		return 0
	}
	remaining := (1 - avg) / a.progressRate
	if remaining < 0 {
		return 0
	}
	return time.Duration(remaining * float64(time.Second))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DrainChannel reads all updates from the channel without processing. Use
// this when no aggregation is wanted and updates should simply be discarded.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
