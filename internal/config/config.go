// Package config assembles an AppConfig from command-line flags, environment
// variable overrides, and hardware-adaptive defaults, then exposes it as a
// fibonacci.Options value for the calculation layer to consume.
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/agbruneau/fibcore/internal/fibonacci"
)

// EnvPrefix is prepended to every environment variable name config.go and
// env.go recognize, e.g. FIBCALC_N, FIBCALC_ALGO.
const EnvPrefix = "FIBCALC_"

// DefaultTimeout bounds a single calculation run when the caller supplies no
// explicit --timeout.
const DefaultTimeout = 5 * time.Minute

// AppConfig holds every setting a fibcalc invocation needs: which Fibonacci
// index to compute, which algorithm(s) to run it with, and the thresholds,
// limits and output preferences governing the run.
type AppConfig struct {
	N                  uint64
	Algo               string
	Timeout            time.Duration
	Threshold          int
	FFTThreshold       int
	StrassenThreshold  int
	LastDigits         uint32
	MemoryLimit        string
	OutputFile         string
	CalibrationProfile string
	Verbose            bool
	Details            bool
	Quiet              bool
	Calibrate          bool
	AutoCalibrate      bool
	ShowValue          bool
}

// ToCalculationOptions converts the CLI-facing AppConfig into the
// fibonacci.Options the calculation layer understands, parsing the
// human-readable MemoryLimit string (e.g. "8G") into bytes.
func (c AppConfig) ToCalculationOptions() fibonacci.Options {
	memLimit, _ := ParseMemoryLimit(c.MemoryLimit)
	return fibonacci.Options{
		ParallelThreshold: c.Threshold,
		FFTThreshold:      c.FFTThreshold,
		StrassenThreshold: c.StrassenThreshold,
		LastDigits:        c.LastDigits,
		MemoryLimit:       memLimit,
		Verbose:           c.Verbose,
		Details:           c.Details,
	}
}

// ParseMemoryLimit parses a human-readable memory limit such as "512M" or
// "8G" into a byte count. An empty string parses to 0 (unlimited).
func ParseMemoryLimit(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	multiplier := uint64(1)
	suffix := s[len(s)-1]
	switch suffix {
	case 'K', 'k':
		multiplier = 1024
		s = s[:len(s)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		s = s[:len(s)-1]
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}

	val, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid memory limit %q: %w", s, err)
	}
	return val * multiplier, nil
}

// ParseConfig parses cmdArgs (excluding the program name) into an AppConfig,
// applying environment variable overrides for any flag left at its default.
// availableAlgos is used only to render a useful usage message; it does not
// restrict which --algo value is accepted (an unknown name simply produces
// an empty calculator list downstream).
func ParseConfig(programName string, cmdArgs []string, errWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{}

	fs.Uint64Var(&cfg.N, "n", 1000, "Fibonacci index to compute")
	fs.StringVar(&cfg.Algo, "algo", "fast", fmt.Sprintf("algorithm to run: one of %v, or \"all\"", availableAlgos))
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "maximum time allowed for the calculation")
	fs.IntVar(&cfg.Threshold, "threshold", 0, "parallel-multiplication bit threshold (0 = adaptive default)")
	fs.IntVar(&cfg.FFTThreshold, "fft-threshold", 0, "FFT bit threshold (0 = adaptive default)")
	fs.IntVar(&cfg.StrassenThreshold, "strassen-threshold", 0, "Strassen matrix-multiplication bit threshold (0 = adaptive default)")
	fs.StringVar(&cfg.MemoryLimit, "memory-limit", "", "reject the calculation if its estimated memory exceeds this (e.g. \"8G\")")
	fs.StringVar(&cfg.OutputFile, "output", "", "write the full decimal result to this file instead of stdout")
	fs.StringVar(&cfg.CalibrationProfile, "calibration-profile", "", "path to a cached calibration profile")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose diagnostic logging")
	fs.BoolVar(&cfg.Details, "details", false, "show per-algorithm timing detail")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "suppress progress output")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "run full threshold calibration and exit")
	fs.BoolVar(&cfg.AutoCalibrate, "auto-calibrate", false, "run a quick calibration pass before computing")
	fs.BoolVar(&cfg.ShowValue, "calculate", true, "print the computed Fibonacci value")
	var lastDigits uint
	fs.UintVar(&lastDigits, "last-digits", 0, "compute only the last K decimal digits of F(n) (0 = full value)")

	if err := fs.Parse(cmdArgs); err != nil {
		return cfg, err
	}
	cfg.LastDigits = uint32(lastDigits)

	applyEnvOverrides(&cfg, fs)
	return cfg, nil
}
