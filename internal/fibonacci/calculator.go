package fibonacci

import (
	"context"
	"math/big"
)

// MaxFibUint64 is F(93), the largest Fibonacci number representable in a
// uint64. Indices at or below it are served from fibLookupTable instead of
// running a doubling/matrix loop.
const MaxFibUint64 = 93

// coreCalculator is the internal contract a Fibonacci algorithm implements:
// compute F(n) and report fractional progress through reporter, with no
// knowledge of observers, channels, or the small-n fast path. FibCalculator
// adds those cross-cutting concerns around any coreCalculator.
type coreCalculator interface {
	CalculateCore(ctx context.Context, reporter ProgressCallback, n uint64, opts Options) (*big.Int, error)
	Name() string
}

// Calculator is the public interface consumers use to run a Fibonacci
// calculation, optionally wired to a ProgressSubject for progress
// notifications.
type Calculator interface {
	Calculate(ctx context.Context, subject *ProgressSubject, calcIndex int, n uint64, opts Options) (*big.Int, error)
	Name() string
}

// FibCalculator decorates a coreCalculator with the behavior every
// algorithm needs identically: serving n <= MaxFibUint64 from a
// precomputed table, normalizing Options, and guaranteeing a final 1.0
// progress notification on success.
type FibCalculator struct {
	core coreCalculator
}

// NewCalculator wraps core in the FibCalculator decorator.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("fibonacci: NewCalculator received a nil coreCalculator")
	}
	return &FibCalculator{core: core}
}

// Name delegates to the wrapped core algorithm.
func (c *FibCalculator) Name() string {
	return c.core.Name()
}

// Calculate adapts the observer-based public interface to the core
// algorithm's plain callback by delegating to CalculateWithObservers, which
// also serves the small-n fast path.
func (c *FibCalculator) Calculate(ctx context.Context, subject *ProgressSubject, calcIndex int, n uint64, opts Options) (*big.Int, error) {
	return c.CalculateWithObservers(ctx, subject, calcIndex, n, opts)
}

// CalculateWithObservers is the full implementation behind Calculate. It is
// exposed directly so callers holding a concrete *FibCalculator can use it
// without going through the narrower Calculator interface.
func (c *FibCalculator) CalculateWithObservers(ctx context.Context, subject *ProgressSubject, calcIndex int, n uint64, opts Options) (*big.Int, error) {
	var report ProgressCallback
	if subject != nil {
		report = subject.Freeze(calcIndex)
	}

	if n <= MaxFibUint64 {
		if report != nil {
			report(1.0)
		}
		return lookupSmallFib(n), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm := opts.Normalize()
	result, err := c.core.CalculateCore(ctx, report, n, norm)
	if err == nil && result != nil && report != nil {
		report(1.0)
	}
	return result, err
}

// fibLookupTable holds F(0) through F(MaxFibUint64), computed once at
// package init so the small-n fast path never touches a doubling or
// matrix loop.
var fibLookupTable [MaxFibUint64 + 1]*big.Int

func init() {
	var a, b uint64 = 0, 1
	for i := uint64(0); i <= MaxFibUint64; i++ {
		fibLookupTable[i] = new(big.Int).SetUint64(a)
		a, b = b, a+b
	}
}

// lookupSmallFib returns a fresh copy of F(n) for n <= MaxFibUint64. The
// copy matters: fibLookupTable is shared across every caller, and handing
// out the table's own *big.Int would let one caller's in-place arithmetic
// corrupt every other caller's view of it.
func lookupSmallFib(n uint64) *big.Int {
	return new(big.Int).Set(fibLookupTable[n])
}
