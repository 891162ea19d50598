package fibonacci

import (
	apperrors "github.com/agbruneau/fibcore/internal/errors"
)

// Options configures a single Calculate call: the thresholds at which the
// multiplication strategy switches modes, the memory budget the caller is
// willing to spend, and reporting preferences. The zero value is valid and
// selects the package defaults.
type Options struct {
	// ParallelThreshold is the operand bit length above which independent
	// multiplications within a doubling step run concurrently. Zero selects
	// DefaultParallelThreshold.
	ParallelThreshold int
	// FFTThreshold is the operand bit length above which multiplication
	// switches to the FFT-based strategy. Zero selects DefaultFFTThreshold.
	FFTThreshold int
	// StrassenThreshold is the matrix-entry bit length above which matrix
	// multiplication uses Strassen's algorithm. Zero selects
	// DefaultStrassenThreshold.
	StrassenThreshold int
	// LastDigits, if non-zero, is the number of trailing decimal digits the
	// caller wants reported. Calculate does not read it and always returns
	// the full F(n).
	LastDigits uint32
	// MemoryLimit caps the estimated memory a calculation may use, in
	// bytes. Zero means unlimited.
	MemoryLimit uint64
	// Verbose requests additional diagnostic logging from the calculator.
	Verbose bool
	// Details requests per-algorithm timing detail from the orchestrator.
	Details bool
	// DynamicThresholds enables runtime retuning of FFTThreshold and
	// ParallelThreshold from observed iteration timings, overriding the
	// static values above once enough iterations have run to judge.
	DynamicThresholds bool
}

// Normalize returns a copy of o with zero-valued threshold fields replaced
// by their package defaults.
func (o Options) Normalize() Options {
	if o.ParallelThreshold == 0 {
		o.ParallelThreshold = DefaultParallelThreshold
	}
	if o.FFTThreshold == 0 {
		o.FFTThreshold = DefaultFFTThreshold
	}
	if o.StrassenThreshold == 0 {
		o.StrassenThreshold = DefaultStrassenThreshold
	}
	return o
}

// Validate normalizes o and, if a MemoryLimit is configured, rejects it
// with a Config error when the estimated memory usage for n exceeds the
// limit. It must be called before any allocation-heavy work begins.
func (o Options) Validate(n uint64) (Options, error) {
	norm := o.Normalize()
	if norm.MemoryLimit == 0 {
		return norm, nil
	}
	estimate := EstimateMemoryUsage(n, norm)
	if estimate > norm.MemoryLimit {
		return norm, apperrors.NewConfigError(
			"estimated memory usage %d bytes exceeds configured limit %d bytes for n=%d",
			estimate, norm.MemoryLimit, n)
	}
	return norm, nil
}
