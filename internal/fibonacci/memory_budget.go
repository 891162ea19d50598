package fibonacci

import "fmt"

// MemoryEstimate breaks down the estimated memory usage of a Calculate call
// by subsystem, so callers can see where the budget goes rather than just
// the total.
type MemoryEstimate struct {
	StateBytes     uint64 // CalculationState / matrixState big.Int registers
	FFTBufferBytes uint64 // Fermat-ring coefficients allocated by the FFT path
	OverheadBytes  uint64 // GC headroom and runtime bookkeeping
	TotalBytes     uint64
}

// String renders a human-readable breakdown of the estimate.
func (e MemoryEstimate) String() string {
	return fmt.Sprintf("state=%s fft=%s overhead=%s total=%s",
		formatBytes(e.StateBytes), formatBytes(e.FFTBufferBytes),
		formatBytes(e.OverheadBytes), formatBytes(e.TotalBytes))
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1fGB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// EstimateMemoryBreakdown predicts the peak memory a Calculate(n, opts)
// call will need, broken down by subsystem, without performing the
// calculation. F(n) itself occupies roughly n*FibonacciGrowthFactor bits;
// CalculationState keeps 6 registers of that size, and crossing
// opts.FFTThreshold adds the FFT path's own coefficient buffers on top.
func EstimateMemoryBreakdown(n uint64, opts Options) MemoryEstimate {
	norm := opts.Normalize()

	bitsPerFib := float64(n) * FibonacciGrowthFactor
	wordsPerFib := uint64(bitsPerFib/64) + 1
	bytesPerFib := wordsPerFib * 8

	// CalculationState carries 6 big.Int registers (FK, FK1, T1..T4); the
	// matrix path carries a comparable number across res/p/tempMatrix plus
	// scratch, so 6 is representative of either engine.
	stateBytes := bytesPerFib * 6

	var fftBytes uint64
	if bitsPerFib > float64(norm.FFTThreshold) {
		// mulFFT/sqrFFT need the transformed Fermat-ring representation of
		// both operands plus the product, each several times the size of
		// the operand itself once the ring modulus padding is included.
		fftBytes = bytesPerFib * 4
	}

	overheadBytes := (stateBytes + fftBytes) / 2
	total := stateBytes + fftBytes + overheadBytes

	return MemoryEstimate{
		StateBytes:     stateBytes,
		FFTBufferBytes: fftBytes,
		OverheadBytes:  overheadBytes,
		TotalBytes:     total,
	}
}

// EstimateMemoryUsage predicts the total peak memory, in bytes, a
// Calculate(n, opts) call will need. It is the value Options.Validate
// compares against MemoryLimit.
func EstimateMemoryUsage(n uint64, opts Options) uint64 {
	return EstimateMemoryBreakdown(n, opts).TotalBytes
}
