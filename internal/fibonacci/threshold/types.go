package threshold

import "time"

// IterationMetric records the outcome of one doubling/matrix step: how wide
// the operands were and which of the three optimized multiplication modes
// (if any) was used to produce that timing.
type IterationMetric struct {
	BitLen       int
	Duration     time.Duration
	UsedFFT      bool
	UsedParallel bool
	UsedStrassen bool
}

// DynamicThresholdConfig configures a DynamicThresholdManager built from
// configuration rather than explicit threshold values.
type DynamicThresholdConfig struct {
	Enabled             bool
	AdjustmentInterval  int
	InitialFFTThreshold int

	// InitialParallelThreshold seeds the manager's starting parallel
	// threshold; 0 falls back to the package default via
	// NewDynamicThresholdManagerFromConfig's caller.
	InitialParallelThreshold int

	// InitialStrassenThreshold seeds the manager's starting Strassen
	// matrix-multiplication threshold; 0 falls back the same way.
	InitialStrassenThreshold int
}

// ThresholdStats is a point-in-time snapshot of a DynamicThresholdManager's
// state, returned by GetStats for logging and diagnostics.
type ThresholdStats struct {
	CurrentFFT          int
	CurrentParallel     int
	CurrentStrassen     int
	OriginalFFT         int
	OriginalParallel    int
	OriginalStrassen    int
	MetricsCollected    int
	IterationsProcessed int
}
