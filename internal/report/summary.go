package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ironsheep/alveoli-tools/internal/analysis"
)

// PrintSummary writes the human-readable result of a comparison: each
// condition's mean and standard error, the p-value, then the per-sample and
// summary tables.
func PrintSummary(w io.Writer, summaries []analysis.Summary, result *analysis.TTestResult, rows []Row) error {
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%s - Mean Alveoli Count: %.4f Standard Error: %.4f (n=%d)\n",
			s.Condition, s.Mean, s.StdErr, s.N); err != nil {
			return err
		}
	}
	if result != nil {
		fmt.Fprintf(w, "T-test p-value: %.6g (t=%.4f, df=%g)\n", result.PValue, result.Statistic, result.DF)
	}

	fmt.Fprintln(w, "\nAlveoli counts grouped by condition:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Sample\tCondition\tAlveoli Count")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Sample, r.Condition, r.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nSummary statistics:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Condition\tMean Count\tStandard Error\tp-value")
	for _, s := range summaries {
		p := "-"
		if result != nil {
			p = fmt.Sprintf("%.6g", result.PValue)
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%s\n", s.Condition, s.Mean, s.StdErr, p)
	}
	return tw.Flush()
}
