package app

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	apperrors "github.com/agbruneau/fibcore/internal/errors"
	"github.com/agbruneau/fibcore/internal/orchestration"
	"github.com/agbruneau/fibcore/internal/progress"
)

// plainPresenter renders orchestration results as plain text: no ANSI
// colors, no TUI dependency, just tabwriter-aligned columns. It implements
// orchestration.ResultPresenter, orchestration.ErrorHandler and
// orchestration.DurationFormatter.
type plainPresenter struct{}

// FormatDuration implements orchestration.DurationFormatter.
func (plainPresenter) FormatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

// PresentComparisonTable implements orchestration.ResultPresenter.
func (p plainPresenter) PresentComparisonTable(results []orchestration.CalculationResult, out io.Writer) {
	fmt.Fprintln(out, "\nAlgorithm                                         Duration    Status")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, p.FormatDuration(r.Duration), status)
	}
	tw.Flush()
}

// PresentResult implements orchestration.ResultPresenter.
func (plainPresenter) PresentResult(result orchestration.CalculationResult, n uint64, verbose, details, showValue bool, out io.Writer) {
	fmt.Fprintf(out, "\nF(%d) computed by %s in %s\n", n, result.Name, result.Duration.Round(time.Microsecond))
	if showValue {
		fmt.Fprintf(out, "%s\n", result.Result.String())
	}
	if verbose {
		fmt.Fprintf(out, "digits: %d\n", len(result.Result.String()))
	}
}

// HandleError implements orchestration.ErrorHandler.
func (plainPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	if err == nil {
		return apperrors.ExitErrorGeneric
	}
	fmt.Fprintf(out, "error: %v\n", err)
	return apperrors.ExitErrorGeneric
}

// plainProgressReporter implements orchestration.ProgressReporter by
// printing one aggregated line per update via orchestration.ProgressAggregator,
// overwriting itself with a carriage return.
type plainProgressReporter struct{}

func (plainProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numCalculators)
	for update := range progressChan {
		if agg == nil {
			continue
		}
		ap := agg.Update(update)
		fmt.Fprintf(out, "\rprogress: %5.1f%% (eta %s)    ", ap.AverageProgress*100, ap.ETA.Round(time.Second))
	}
	if agg != nil {
		fmt.Fprintln(out)
	}
}
