package app

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/agbruneau/fibcore/internal/config"
	apperrors "github.com/agbruneau/fibcore/internal/errors"
	"github.com/agbruneau/fibcore/internal/fibonacci"
	"github.com/agbruneau/fibcore/internal/orchestration"
)

// runCalculate is the default operating mode: compute F(n) with whichever
// algorithm(s) --algo selects, cross-validating across them when --algo=all.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	if a.Config.LastDigits > 0 {
		return a.runLastDigits(ctx, out)
	}

	if a.Config.MemoryLimit != "" {
		if code := a.validateMemoryBudget(out); code != apperrors.ExitSuccess {
			return code
		}
	}

	ctx, cleanup := withLifecycle(ctx, a.Config)
	defer cleanup()

	calculators := a.getCalculatorsToRun()
	if len(calculators) == 0 {
		fmt.Fprintf(a.ErrWriter, "unknown algorithm %q (available: %v)\n", a.Config.Algo, a.Factory.List())
		return apperrors.ExitErrorConfig
	}

	var reporter orchestration.ProgressReporter = plainProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		reporter = orchestration.NullProgressReporter{}
	}

	opts := a.Config.ToCalculationOptions()
	results := orchestration.ExecuteCalculations(ctx, calculators, a.Config.N, opts, reporter, progressOut)

	if a.Metrics != nil {
		a.Metrics.SetThresholds(a.Config.Threshold, a.Config.FFTThreshold, a.Config.StrassenThreshold)
		for _, r := range results {
			a.Metrics.ObserveResult(r.Name, r.Duration, r.Err)
		}
	}

	presenter := plainPresenter{}
	if a.Config.Quiet {
		if best := findBestResult(results); best != nil {
			fmt.Fprintln(out, best.Result.String())
			return apperrors.ExitSuccess
		}
		return apperrors.ExitErrorGeneric
	}

	presOpts := orchestration.PresentationOptions{
		N: a.Config.N, Verbose: a.Config.Verbose, Details: a.Config.Details, ShowValue: a.Config.ShowValue,
	}
	return orchestration.AnalyzeComparisonResults(results, presOpts, presenter, presenter, out)
}

// validateMemoryBudget rejects the run up front if the estimated memory
// needed for F(n) exceeds --memory-limit.
func (a *Application) validateMemoryBudget(out io.Writer) int {
	limit, err := config.ParseMemoryLimit(a.Config.MemoryLimit)
	if err != nil {
		fmt.Fprintf(out, "invalid --memory-limit: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	est := fibonacci.EstimateMemoryBreakdown(a.Config.N, a.Config.ToCalculationOptions())
	if est.TotalBytes > limit {
		fmt.Fprintf(out, "estimated memory %s exceeds limit %s\n", est.String(), a.Config.MemoryLimit)
		if a.Config.LastDigits == 0 {
			fmt.Fprintf(out, "consider --last-digits K for O(K) memory usage\n")
		}
		return apperrors.ExitErrorConfig
	}
	if !a.Config.Quiet {
		fmt.Fprintf(out, "memory estimate: %s (limit: %s)\n", est.String(), a.Config.MemoryLimit)
	}
	return apperrors.ExitSuccess
}

// runLastDigits computes only the last K decimal digits of F(n) via
// modular fast doubling, which needs O(K) memory regardless of n.
func (a *Application) runLastDigits(ctx context.Context, out io.Writer) int {
	ctx, cleanup := withLifecycle(ctx, a.Config)
	defer cleanup()

	k := a.Config.LastDigits
	n := a.Config.N
	mod := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(k)), nil)

	if !a.Config.Quiet {
		fmt.Fprintf(out, "computing last %d digits of F(%d)...\n", k, n)
	}

	start := time.Now()
	result, err := fibonacci.FastDoublingMod(n, mod)
	elapsed := time.Since(start)
	if a.Metrics != nil {
		a.Metrics.ObserveResult("fast-doubling-mod", elapsed, err)
	}
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}

	digits := result.String()
	if len(digits) < int(k) {
		// Zero-pad to k digits unless F(n) itself has fewer than k digits.
		// F(n) >= phi^(n-2), so F(n) < 10^k needs n <= 5k+2; in that range
		// F(n) < 2^n has O(k) digits and is computed exactly to decide.
		short := false
		if n <= 5*uint64(k)+2 {
			full, ferr := fibonacci.FastDoublingMod(n, new(big.Int).Lsh(big.NewInt(1), uint(n)))
			short = ferr == nil && full.Cmp(mod) < 0
		}
		if !short {
			digits = fmt.Sprintf("%0*s", int(k), digits)
		}
	}
	if a.Config.Quiet {
		fmt.Fprintln(out, digits)
		return apperrors.ExitSuccess
	}
	fmt.Fprintf(out, "last %d digits of F(%d): %s\n", k, n, digits)
	fmt.Fprintf(out, "computed in %s\n", elapsed.Round(time.Millisecond))
	return apperrors.ExitSuccess
}

func findBestResult(results []orchestration.CalculationResult) *orchestration.CalculationResult {
	var best *orchestration.CalculationResult
	for i := range results {
		if results[i].Err == nil && (best == nil || results[i].Duration < best.Duration) {
			best = &results[i]
		}
	}
	return best
}
