package calibration

import (
	"context"
	"io"
	"time"

	"github.com/agbruneau/fibcore/internal/config"
	"github.com/agbruneau/fibcore/internal/fibonacci"
)

// calibrationN is the Fibonacci index benchmarked at each candidate
// threshold during a full calibration run. Large enough that Karatsuba and
// FFT multiplication both get meaningful exercise, small enough that a full
// sweep across GenerateParallelThresholds finishes in seconds.
const calibrationN = 200000

// quickCalibrationN is used by AutoCalibrate, which runs far fewer
// candidates and must stay fast enough to run on every startup.
const quickCalibrationN = 50000

// benchmarkAt times a single fast-doubling run of F(n) with the given
// thresholds applied.
func benchmarkAt(ctx context.Context, n uint64, fftThreshold, parallelThreshold int) (time.Duration, error) {
	calc := fibonacci.NewCalculator(&fibonacci.OptimizedFastDoubling{})
	opts := fibonacci.Options{FFTThreshold: fftThreshold, ParallelThreshold: parallelThreshold}
	start := time.Now()
	_, err := calc.Calculate(ctx, nil, 0, n, opts)
	return time.Since(start), err
}

// RunCalibration sweeps GenerateParallelThresholds and GenerateQuickFFTThresholds,
// printing a summary table to out, and returns a CalibrationProfile holding
// whichever threshold combination ran fastest.
func RunCalibration(ctx context.Context, out io.Writer) (*CalibrationProfile, error) {
	start := time.Now()

	parallelCandidates := GenerateParallelThresholds()
	parallelResults := make([]benchmarkResult, 0, len(parallelCandidates))
	bestParallel, bestParallelDur := parallelCandidates[0], time.Duration(1<<63-1)
	for _, th := range parallelCandidates {
		d, err := benchmarkAt(ctx, calibrationN, fibonacci.DefaultFFTThreshold, th)
		parallelResults = append(parallelResults, benchmarkResult{Threshold: th, Duration: d, Err: err})
		if err == nil && d < bestParallelDur {
			bestParallel, bestParallelDur = th, d
		}
	}
	printCalibrationResults(out, parallelResults, bestParallel)

	fftCandidates := GenerateQuickFFTThresholds()
	fftResults := make([]benchmarkResult, 0, len(fftCandidates))
	bestFFT, bestFFTDur := fftCandidates[0], time.Duration(1<<63-1)
	for _, th := range fftCandidates {
		d, err := benchmarkAt(ctx, calibrationN, th, bestParallel)
		fftResults = append(fftResults, benchmarkResult{Threshold: th, Duration: d, Err: err})
		if err == nil && d < bestFFTDur {
			bestFFT, bestFFTDur = th, d
		}
	}
	printCalibrationResults(out, fftResults, bestFFT)

	profile := NewProfile()
	profile.OptimalParallelThreshold = bestParallel
	profile.OptimalFFTThreshold = bestFFT
	profile.OptimalStrassenThreshold = EstimateOptimalStrassenThreshold()
	profile.CalibrationN = calibrationN
	profile.CalibrationTime = time.Since(start).String()

	return profile, nil
}

// AutoCalibrate runs a fast, reduced-candidate calibration pass suitable
// for running before every calculation rather than on explicit request, and
// prints a one-line summary to out.
func AutoCalibrate(ctx context.Context, out io.Writer) (*CalibrationProfile, error) {
	parallelCandidates := GenerateQuickParallelThresholds()
	bestParallel, bestParallelDur := parallelCandidates[0], time.Duration(1<<63-1)
	for _, th := range parallelCandidates {
		d, err := benchmarkAt(ctx, quickCalibrationN, fibonacci.DefaultFFTThreshold, th)
		if err == nil && d < bestParallelDur {
			bestParallel, bestParallelDur = th, d
		}
	}

	profile := NewProfile()
	profile.OptimalParallelThreshold = bestParallel
	profile.OptimalFFTThreshold = EstimateOptimalFFTThreshold()
	profile.OptimalStrassenThreshold = EstimateOptimalStrassenThreshold()
	profile.CalibrationN = quickCalibrationN
	profile.CalibrationTime = "quick"

	printCalibrationOutput(profile.OptimalFFTThreshold, profile.OptimalParallelThreshold, profile.OptimalStrassenThreshold, out)
	return profile, nil
}

// LoadCachedCalibration loads the profile at path (GetDefaultProfilePath if
// path is empty) and, if it is valid for the running hardware and the
// caller left its thresholds at their zero-value defaults, copies its
// Optimal* thresholds into cfg. The bool result reports whether cfg was
// modified.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	profile, loaded := LoadOrCreateProfile(path)
	if !loaded || !profile.IsValid() {
		return cfg, false
	}
	changed := false
	if cfg.Threshold == 0 {
		cfg.Threshold = profile.OptimalParallelThreshold
		changed = true
	}
	if cfg.FFTThreshold == 0 {
		cfg.FFTThreshold = profile.OptimalFFTThreshold
		changed = true
	}
	if cfg.StrassenThreshold == 0 {
		cfg.StrassenThreshold = profile.OptimalStrassenThreshold
		changed = true
	}
	return cfg, changed
}
