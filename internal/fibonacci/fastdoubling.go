package fibonacci

import (
	"context"
	"math/big"
	"runtime"

	"github.com/agbruneau/fibcore/internal/fibonacci/memory"
	"github.com/agbruneau/fibcore/internal/fibonacci/threshold"
)

// OptimizedFastDoubling computes F(n) via the fast-doubling recurrence,
// using KaratsubaStrategy for its multiplications (escalating to the FFT
// path itself once operands cross opts.FFTThreshold) and running each
// iteration's three products in parallel once FK1 is large enough to make
// the goroutine fan-out worthwhile.
type OptimizedFastDoubling struct{}

// Name implements coreCalculator.
func (OptimizedFastDoubling) Name() string {
	return "Fast Doubling (O(log n), Parallel, Zero-Alloc)"
}

// CalculateCore implements coreCalculator.
func (OptimizedFastDoubling) CalculateCore(ctx context.Context, reporter ProgressCallback, n uint64, opts Options) (*big.Int, error) {
	s := AcquireState()
	defer ReleaseState(s)

	gc := memory.NewGCController("auto", n)
	gc.Begin()
	defer gc.End()
	// FK1 starts at 1, not 0; presizing would silently reset it, so only the
	// zero-valued registers are grown ahead of time.
	presizeFromArena(n, s.FK, s.T1, s.T2, s.T3, s.T4)

	framework := NewDoublingFramework(KaratsubaStrategy{})
	if opts.DynamicThresholds {
		norm := opts.Normalize()
		framework.WithDynamicThresholds(threshold.NewDynamicThresholdManager(norm.FFTThreshold, norm.ParallelThreshold, norm.StrassenThreshold))
	}
	return framework.ExecuteDoublingLoop(ctx, reporter, n, opts, s, runtime.NumCPU() > 1)
}
