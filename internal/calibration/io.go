package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// benchmarkResult is one row of a calibration sweep: the threshold tested
// and how long a fixed-size workload took at that threshold.
type benchmarkResult struct {
	Threshold int
	Duration  time.Duration
	Err       error
}

// printCalibrationResults formats and prints a calibration sweep's results
// as a plain-text table, marking the fastest successful row as optimal.
func printCalibrationResults(out io.Writer, results []benchmarkResult, bestThreshold int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  Threshold\tExecution Time\n")
	fmt.Fprintf(tw, "  %s\n", strings.Repeat("-", 30))
	for _, res := range results {
		thresholdLabel := fmt.Sprintf("%d bits", res.Threshold)
		if res.Threshold == 0 {
			thresholdLabel = "Sequential"
		}
		durationStr := "N/A"
		if res.Err == nil {
			durationStr = res.Duration.String()
			if res.Duration == 0 {
				durationStr = "< 1µs"
			}
		}
		highlight := ""
		if res.Threshold == bestThreshold && res.Err == nil {
			highlight = " (optimal)"
		}
		fmt.Fprintf(tw, "  %s\t%s%s\n", thresholdLabel, durationStr, highlight)
	}
	tw.Flush()
}

// printCalibrationOutput prints a one-line summary of the thresholds an
// auto-calibration pass settled on.
func printCalibrationOutput(fftThreshold, parallelThreshold, strassenThreshold int, out io.Writer) {
	fmt.Fprintf(out, "auto-calibration: parallel=%d bits, fft=%d bits, strassen=%d bits\n",
		parallelThreshold, fftThreshold, strassenThreshold)
}
