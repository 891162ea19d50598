// Package app wires together configuration, the calculator factory, and
// the orchestration layer into the fibcalc command-line entry point.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/agbruneau/fibcore/internal/calibration"
	"github.com/agbruneau/fibcore/internal/cancel"
	"github.com/agbruneau/fibcore/internal/config"
	apperrors "github.com/agbruneau/fibcore/internal/errors"
	"github.com/agbruneau/fibcore/internal/fibonacci"
	"github.com/agbruneau/fibcore/internal/metrics"
	"github.com/agbruneau/fibcore/internal/orchestration"
)

// Application holds everything a single fibcalc invocation needs once its
// arguments have been parsed: the resolved configuration, the calculator
// factory to pull algorithms from, and the stream diagnostics are written
// to.
type Application struct {
	Config    config.AppConfig
	Factory   fibonacci.CalculatorFactory
	ErrWriter io.Writer

	// Metrics collects Prometheus metrics for every calculator run. It is
	// never registered to any registry by this package; callers that want
	// the metrics exposed (e.g. scraped, or asserted on in a test) pull
	// Metrics.Collectors() into a registry of their own choosing.
	Metrics *metrics.CalculationMetrics
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory overrides the default CalculatorFactory, mainly for tests
// that want to inject mock calculators.
func WithFactory(f fibonacci.CalculatorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithMetrics overrides the default CalculationMetrics, mainly for tests
// that want to inspect recorded observations directly.
func WithMetrics(m *metrics.CalculationMetrics) AppOption {
	return func(a *Application) { a.Metrics = m }
}

// New parses args (with args[0] treated as the program name, matching
// os.Args) into an Application, resolving thresholds through the chain
// documented in config/thresholds.go: explicit flags and environment
// variables first, then a cached calibration profile, then hardware-
// adaptive estimation.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	a := &Application{ErrWriter: errWriter, Metrics: metrics.NewCalculationMetrics()}
	for _, opt := range opts {
		opt(a)
	}
	if a.Factory == nil {
		a.Factory = fibonacci.NewDefaultFactory()
	}

	programName := "fibcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, a.Factory.List())
	if err != nil {
		return nil, err
	}

	if withProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
		cfg = withProfile
	} else {
		cfg = config.ApplyAdaptiveThresholds(cfg)
	}

	a.Config = cfg
	return a, nil
}

// Run dispatches to calibration or calculation mode and returns the
// process exit code. When --output names a file, everything the run would
// write to out (results, progress and memory-budget messages) goes to that
// file instead; messages written to ErrWriter are unaffected.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.OutputFile != "" {
		f, err := os.Create(a.Config.OutputFile)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "cannot open --output file %q: %v\n", a.Config.OutputFile, err)
			return apperrors.ExitErrorConfig
		}
		defer f.Close()
		out = f
	}

	if a.Config.Calibrate {
		return a.runCalibration(ctx, out)
	}

	a.Config = a.runAutoCalibrationIfEnabled(ctx, out)

	return a.runCalculate(ctx, out)
}

func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	profile, err := calibration.RunCalibration(ctx, out)
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	path := a.Config.CalibrationProfile
	if path == "" {
		path = calibration.GetDefaultProfilePath()
	}
	if err := profile.SaveProfile(path); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if !a.Config.AutoCalibrate {
		return a.Config
	}
	profile, err := calibration.AutoCalibrate(ctx, out)
	if err != nil {
		return a.Config
	}
	cfg := a.Config
	cfg.Threshold = profile.OptimalParallelThreshold
	cfg.FFTThreshold = profile.OptimalFFTThreshold
	cfg.StrassenThreshold = profile.OptimalStrassenThreshold
	return cfg
}

// withLifecycle bounds ctx by the configured timeout and arranges for
// SIGINT/SIGTERM to cancel it, returning the derived context and a single
// cleanup func covering both.
func withLifecycle(ctx context.Context, cfg config.AppConfig) (context.Context, func()) {
	token := cancel.WithDeadline(ctx, cfg.Timeout, os.Interrupt, syscall.SIGTERM)
	return token.Context(), token.Cancel
}

// IsHelpError reports whether err is the error flag.Parse returns for -h/--help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// getCalculatorsToRun is a thin indirection over orchestration.GetCalculatorsToRun
// kept local so calculate.go doesn't need to import orchestration just for this.
func (a *Application) getCalculatorsToRun() []fibonacci.Calculator {
	return orchestration.GetCalculatorsToRun(a.Config, a.Factory)
}
