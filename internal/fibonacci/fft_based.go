package fibonacci

import (
	"context"
	"math/big"
	"runtime"

	"github.com/agbruneau/fibcore/internal/fibonacci/memory"
)

// FFTBasedCalculator computes F(n) via the same fast-doubling recurrence
// as OptimizedFastDoubling, but always routes the doubling step's
// multiplications through the Schönhage-Strassen FFT path regardless of
// operand size. It exists to exercise and benchmark the FFT path in
// isolation, independent of the threshold logic AdaptiveStrategy applies.
type FFTBasedCalculator struct{}

// Name implements coreCalculator.
func (FFTBasedCalculator) Name() string {
	return "FFT-Based Doubling"
}

// CalculateCore implements coreCalculator.
func (FFTBasedCalculator) CalculateCore(ctx context.Context, reporter ProgressCallback, n uint64, opts Options) (*big.Int, error) {
	s := AcquireState()
	defer ReleaseState(s)

	gc := memory.NewGCController("auto", n)
	gc.Begin()
	defer gc.End()
	// FK1 starts at 1, not 0; presizing would silently reset it, so only the
	// zero-valued registers are grown ahead of time.
	presizeFromArena(n, s.FK, s.T1, s.T2, s.T3, s.T4)

	framework := NewDoublingFramework(FFTOnlyStrategy{})
	return framework.ExecuteDoublingLoop(ctx, reporter, n, opts, s, runtime.NumCPU() > 1)
}
