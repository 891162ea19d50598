package fibonacci

import (
	"context"
	"math/big"
	"math/bits"
	"time"

	"github.com/agbruneau/fibcore/internal/fibonacci/threshold"
)

// DoublingFramework drives the fast-doubling recurrence
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k+1)² + F(k)²
//
// using a Strategy for the underlying multiplications, and a fixed
// choreography of pointer swaps on a CalculationState so that, once the
// state is primed, not one of its six *big.Int registers is ever
// reallocated — only their values and the names bound to them change.
type DoublingFramework struct {
	strategy   Strategy
	thresholds *threshold.DynamicThresholdManager
}

// NewDoublingFramework creates a framework driving the doubling loop with
// the given Strategy.
func NewDoublingFramework(strategy Strategy) *DoublingFramework {
	return &DoublingFramework{strategy: strategy}
}

// WithDynamicThresholds attaches a threshold manager that retunes
// opts.FFTThreshold/ParallelThreshold between iterations based on the
// timings it observes, overriding whatever static values opts carries. A
// nil manager (the default) leaves opts untouched, which is the right
// choice for small n where a handful of iterations never accumulate enough
// metrics to justify the bookkeeping.
func (d *DoublingFramework) WithDynamicThresholds(m *threshold.DynamicThresholdManager) *DoublingFramework {
	d.thresholds = m
	return d
}

// ExecuteDoublingLoop computes F(n) into a register owned by state,
// returning it directly. On return the caller owns the returned *big.Int
// outright: state.FK is replaced with a fresh, independent register before
// this function returns, so a subsequent ReleaseState(state) can never
// mutate the result out from under the caller ("result stealing").
//
// progressCb, if non-nil, receives a monotonically increasing fraction in
// [0, 1] as the loop advances; it is invoked at most once per bit
// processed. inParallel requests that each iteration's three products be
// computed concurrently when the strategy judges the operands large
// enough to be worth it.
func (d *DoublingFramework) ExecuteDoublingLoop(ctx context.Context, progressCb ProgressCallback, n uint64, opts Options, s *CalculationState, inParallel bool) (*big.Int, error) {
	if n == 0 {
		result := s.FK
		s.FK = new(big.Int)
		if progressCb != nil {
			progressCb(1)
		}
		return result, nil
	}

	numBits := bits.Len64(n)
	total := uint64(numBits)
	var lastProgress float64

	for i := numBits - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bit := (n >> uint(i)) & 1

		// Capacity-grooming swap: on a bit set to 1 this iteration will
		// need T4 as scratch for the F(2k+2) sum below, so hand it
		// whichever of T1/T4 has grown largest across prior iterations.
		if bit == 1 {
			s.T1, s.T4 = s.T4, s.T1
		}

		stepOpts := opts
		if d.thresholds != nil {
			stepOpts.FFTThreshold, stepOpts.ParallelThreshold, stepOpts.StrassenThreshold = d.thresholds.GetThresholds()
		}

		bitLen := s.FK1.BitLen()
		start := time.Now()
		if err := d.strategy.ExecuteDoublingStep(ctx, s, stepOpts, inParallel); err != nil {
			return nil, err
		}
		if d.thresholds != nil {
			// The doubling strategy never dispatches through the matrix
			// engine's Strassen path, so usedStrassen is always false here.
			d.thresholds.RecordIteration(bitLen, time.Since(start), bitLen >= stepOpts.FFTThreshold, inParallel && bitLen >= stepOpts.ParallelThreshold, false)
			if newFFT, newParallel, newStrassen, adjusted := d.thresholds.ShouldAdjust(); adjusted {
				opts.FFTThreshold, opts.ParallelThreshold, opts.StrassenThreshold = newFFT, newParallel, newStrassen
			}
		}

		// Combine the raw products into F(2k) and F(2k+1), in place:
		//   T3 (FK*FK1)  -> 2*T3 - T2  = F(2k)
		//   T1 (FK1²)    -> T1 + T2    = F(2k+1)
		s.T3.Lsh(s.T3, 1)
		s.T3.Sub(s.T3, s.T2)
		s.T1.Add(s.T1, s.T2)

		// Advance k -> 2k: rotate the combined values into FK/FK1, and
		// recycle the previous FK/FK1 as next iteration's scratch.
		s.FK, s.FK1, s.T2, s.T3, s.T1 = s.T3, s.T1, s.FK, s.FK1, s.T2

		if bit == 1 {
			// Advance 2k -> 2k+1: (FK, FK1) = (FK1, FK+FK1), written into
			// the recycled T4 register instead of a new allocation.
			s.T4.Add(s.FK, s.FK1)
			s.FK, s.FK1, s.T4 = s.FK1, s.T4, s.FK
		}

		lastProgress = ReportStepProgress(progressCb, uint64(numBits-i), total, lastProgress, 0.01)
	}

	result := s.FK
	s.FK = new(big.Int)
	if progressCb != nil && lastProgress < 1 {
		progressCb(1)
	}
	return result, nil
}
