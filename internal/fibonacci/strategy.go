package fibonacci

import (
	"context"
	"math/big"
	"runtime"
	"sync"

	"github.com/agbruneau/fibcore/internal/parallel"
)

// Strategy computes the multiplication/squaring primitives the doubling
// loop needs for one iteration, choosing its own algorithm (math/big,
// Karatsuba-tier, or FFT) based on operand size and the supplied Options.
type Strategy interface {
	// Multiply computes x*y into z (or a freshly allocated value if z is
	// nil), reusing z's storage when possible.
	Multiply(z, x, y *big.Int, opts Options) (*big.Int, error)
	// Square computes x*x into z (or a freshly allocated value if z is nil).
	Square(z, x *big.Int, opts Options) (*big.Int, error)
	// ExecuteDoublingStep fills s.T3 = FK*FK1, s.T1 = FK1², s.T2 = FK²
	// for the current (FK, FK1) pair, optionally running the three
	// operations concurrently.
	ExecuteDoublingStep(ctx context.Context, s *CalculationState, opts Options, inParallel bool) error
}

// KaratsubaStrategy routes every multiplication through smartMultiply and
// smartSquare, which escalate from math/big's Karatsuba/Toom-Cook tiers to
// the FFT path only once the FFT threshold is crossed.
type KaratsubaStrategy struct{}

// Multiply implements Strategy.
func (KaratsubaStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	return smartMultiply(z, x, y, opts.FFTThreshold)
}

// Square implements Strategy.
func (KaratsubaStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	return smartSquare(z, x, opts.FFTThreshold)
}

// ExecuteDoublingStep implements Strategy by running the three doubling
// products through smartMultiply/smartSquare, in parallel when the
// operands are large enough to be worth the goroutine overhead.
func (k KaratsubaStrategy) ExecuteDoublingStep(ctx context.Context, s *CalculationState, opts Options, inParallel bool) error {
	if inParallel && s.FK.BitLen() >= opts.ParallelThreshold {
		return executeDoublingStepParallel(s, opts)
	}
	return executeDoublingStepSequential(ctx, s, opts)
}

func executeDoublingStepSequential(ctx context.Context, s *CalculationState, opts Options) error {
	if _, err := smartMultiply(s.T3, s.FK, s.FK1, opts.FFTThreshold); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := smartSquare(s.T1, s.FK1, opts.FFTThreshold); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := smartSquare(s.T2, s.FK, opts.FFTThreshold); err != nil {
		return err
	}
	return nil
}

func executeDoublingStepParallel(s *CalculationState, opts Options) error {
	return executeParallel3(context.Background(),
		func() error { _, err := smartMultiply(s.T3, s.FK, s.FK1, opts.FFTThreshold); return err },
		func() error { _, err := smartSquare(s.T1, s.FK1, opts.FFTThreshold); return err },
		func() error { _, err := smartSquare(s.T2, s.FK, opts.FFTThreshold); return err },
	)
}

// FFTOnlyStrategy always routes doubling-step multiplications through
// executeDoublingStepFFT, regardless of operand size. It trades throughput
// on small operands for guaranteed coverage of the FFT code path, which is
// useful when benchmarking or fuzzing the FFT-based calculator in
// isolation.
type FFTOnlyStrategy struct{}

// Multiply implements Strategy by always using the FFT path.
func (FFTOnlyStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	v, err := bigfftMul(x, y)
	if err != nil {
		return nil, err
	}
	if z != nil {
		z.Set(v)
		return z, nil
	}
	return v, nil
}

// Square implements Strategy by always using the FFT path.
func (FFTOnlyStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	v, err := sqrFFT(x)
	if err != nil {
		return nil, err
	}
	if z != nil {
		z.Set(v)
		return z, nil
	}
	return v, nil
}

// ExecuteDoublingStep implements Strategy by always transforming FK and
// FK1 through the FFT path.
func (FFTOnlyStrategy) ExecuteDoublingStep(ctx context.Context, s *CalculationState, opts Options, inParallel bool) error {
	return executeDoublingStepFFT(ctx, s, opts, inParallel)
}

func bigfftMul(x, y *big.Int) (*big.Int, error) { return mulFFT(x, y) }

// AdaptiveStrategy picks KaratsubaStrategy below the FFT threshold and
// switches to the FFT-based doubling step once FK has grown past it. F, if
// non-zero, overrides opts.FFTThreshold for the switch decision; the zero
// value defers entirely to opts.
type AdaptiveStrategy struct {
	F int
}

func (a AdaptiveStrategy) threshold(opts Options) int {
	if a.F != 0 {
		return a.F
	}
	return opts.FFTThreshold
}

// Multiply implements Strategy.
func (a AdaptiveStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	return smartMultiply(z, x, y, a.threshold(opts))
}

// Square implements Strategy.
func (a AdaptiveStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	return smartSquare(z, x, a.threshold(opts))
}

// ExecuteDoublingStep implements Strategy, escalating to the FFT path once
// FK crosses the configured threshold.
func (a AdaptiveStrategy) ExecuteDoublingStep(ctx context.Context, s *CalculationState, opts Options, inParallel bool) error {
	threshold := a.threshold(opts)
	if threshold > 0 && s.FK.BitLen() > threshold {
		return executeDoublingStepFFT(ctx, s, opts, inParallel)
	}
	karatsuba := KaratsubaStrategy{}
	return karatsuba.ExecuteDoublingStep(ctx, s, opts, inParallel)
}

// ParallelKaratsubaStrategy is KaratsubaStrategy with doubling-step
// parallelism keyed off P: the three products run concurrently once the
// wider of FK and FK1 reaches P bits (opts.ParallelThreshold when P is
// zero), and sequentially below that.
type ParallelKaratsubaStrategy struct {
	P int
}

// Multiply implements Strategy.
func (ParallelKaratsubaStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	return smartMultiply(z, x, y, opts.FFTThreshold)
}

// Square implements Strategy.
func (ParallelKaratsubaStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	return smartSquare(z, x, opts.FFTThreshold)
}

// ExecuteDoublingStep implements Strategy, running the three products
// concurrently once the operands reach the parallel threshold.
func (p ParallelKaratsubaStrategy) ExecuteDoublingStep(ctx context.Context, s *CalculationState, opts Options, inParallel bool) error {
	threshold := p.P
	if threshold == 0 {
		threshold = opts.ParallelThreshold
	}
	if max(s.FK.BitLen(), s.FK1.BitLen()) >= threshold {
		return executeDoublingStepParallel(s, opts)
	}
	return executeDoublingStepSequential(ctx, s, opts)
}

// getTaskSemaphore returns the process-wide semaphore limiting concurrent
// multiplication/squaring tasks to GOMAXPROCS, so a deeply nested fan-out
// (parallel doubling steps, each spawning parallel FFT transforms) cannot
// oversubscribe the scheduler.
func getTaskSemaphore() chan struct{} {
	taskSemaphoreOnce.Do(func() {
		n := runtime.GOMAXPROCS(0)
		if n < 1 {
			n = 1
		}
		taskSemaphore = make(chan struct{}, n)
	})
	return taskSemaphore
}

// task is implemented by pointer-receiver task types so executeTasks can
// run a homogeneous slice of them through the shared semaphore.
type task interface {
	execute() error
}

// squaringTask computes (*dest) = x*x, optionally through the FFT path.
type squaringTask struct {
	dest         **big.Int
	x            *big.Int
	fftThreshold int
}

func (t *squaringTask) execute() error {
	r, err := smartSquare(*t.dest, t.x, t.fftThreshold)
	if err != nil {
		return err
	}
	*t.dest = r
	return nil
}

// multiplyTask computes (*dest) = x*y, optionally through the FFT path.
type multiplyTask struct {
	dest         **big.Int
	x, y         *big.Int
	fftThreshold int
}

func (t *multiplyTask) execute() error {
	r, err := smartMultiply(*t.dest, t.x, t.y, t.fftThreshold)
	if err != nil {
		return err
	}
	*t.dest = r
	return nil
}

// executeTasks runs tasks either sequentially or fanned out across
// goroutines gated by getTaskSemaphore, returning the first error
// encountered (if any). PT is the pointer-receiver type implementing task
// for element type T, letting callers pass a plain []T.
func executeTasks[T any, PT interface {
	*T
	task
}](tasks []T, inParallel bool) error {
	if !inParallel || len(tasks) <= 1 {
		for i := range tasks {
			if err := PT(&tasks[i]).execute(); err != nil {
				return err
			}
		}
		return nil
	}

	sem := getTaskSemaphore()
	var errs parallel.ErrorCollector
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i := range tasks {
		i := i
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs.SetError(PT(&tasks[i]).execute())
		}()
	}
	wg.Wait()

	return errs.Err()
}

var (
	taskSemaphore     chan struct{}
	taskSemaphoreOnce sync.Once
)

// executeParallel3 runs three independent operations concurrently, gated
// by getTaskSemaphore, and returns the first error encountered. It exists
// because the doubling step's three products (FK*FK1, FK1², FK²) are a
// fixed-arity case that doesn't need the generic executeTasks machinery.
func executeParallel3(ctx context.Context, f1, f2, f3 func() error) error {
	sem := getTaskSemaphore()
	fns := [3]func() error{f1, f2, f3}
	var errs parallel.ErrorCollector

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		i := i
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs.SetError(fns[i]())
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return errs.Err()
}
