package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/alveoli-tools/internal/analysis"
	"github.com/ironsheep/alveoli-tools/internal/config"
	"github.com/ironsheep/alveoli-tools/internal/logger"
	"github.com/ironsheep/alveoli-tools/internal/report"
)

const component = "cli"

// newViewer opens the rendered plot for --show.
var newViewer = func() report.Viewer { return report.NewSystemViewer() }

type analyzeOptions struct {
	imageDir string
	group1   string
	group2   string
	colors   []string
	outDir   string
	show     bool
	pipeline pipelineFlags
}

func analyzeCmd(g *globalOptions) *cobra.Command {
	var o analyzeOptions

	c := &cobra.Command{
		Use:   "analyze",
		Short: "Count alveoli in two conditions, compare them and write the report",
		Long: "Counts every *_<condition>_*.tif tile of both conditions in --image-dir,\n" +
			"excludes zero counts, compares the means with a two-sample t-test and writes\n" +
			config.DefaultCountsFile + ", " + config.DefaultSummaryFile + " and\n" +
			config.DefaultPlotFile + " into --out-dir.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.setup(cmd)
			if err != nil {
				return err
			}
			o.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runAnalysis(cmd.Context(), cfg, &o, log, cmd.OutOrStdout())
		},
	}

	d := config.DefaultConfig()
	c.Flags().StringVar(&o.imageDir, "image-dir", "", "Directory containing the image tiles (required)")
	c.Flags().StringVar(&o.group1, "group1", "", "First condition as it appears in file names (required)")
	c.Flags().StringVar(&o.group2, "group2", "", "Second condition as it appears in file names (required)")
	c.Flags().StringSliceVar(&o.colors, "colors", d.Output.Colors, "Plot colors of the first and second condition")
	c.Flags().StringVar(&o.outDir, "out-dir", d.Output.Dir, "Directory for the CSV files and the plot")
	c.Flags().BoolVar(&o.show, "show", false, "Open the plot when done")
	o.pipeline.bind(c)

	_ = c.MarkFlagRequired("image-dir")
	_ = c.MarkFlagRequired("group1")
	_ = c.MarkFlagRequired("group2")
	return c
}

func (o *analyzeOptions) apply(c *cobra.Command, cfg *config.Config) {
	o.pipeline.apply(c, cfg)
	flags := c.Flags()
	if flags.Changed("colors") {
		cfg.Output.Colors = o.colors
	}
	if flags.Changed("out-dir") {
		cfg.Output.Dir = o.outDir
	}
	if flags.Changed("show") {
		cfg.Output.Show = o.show
	}
}

// runAnalysis analyzes both cohorts, compares them and writes every output.
func runAnalysis(ctx context.Context, cfg *config.Config, o *analyzeOptions, log logger.Logger, out io.Writer) error {
	if o.group1 == o.group2 {
		return fmt.Errorf("group1 and group2 must differ, both are %q", o.group1)
	}

	counter, err := newCounter(cfg, log)
	if err != nil {
		return err
	}
	analyzer := analysis.NewAnalyzer(counter,
		analysis.WithWorkers(cfg.Analysis.Workers),
		analysis.WithAnalyzerLogger(log),
	)

	var cohorts []*analysis.Cohort
	for _, condition := range []string{o.group1, o.group2} {
		paths, err := analysis.DiscoverImages(o.imageDir, condition)
		if err != nil {
			return err
		}
		log.Info(component, "images found", map[string]interface{}{
			"condition": condition,
			"images":    len(paths),
		})

		cohort, err := analyzer.AnalyzeCohort(ctx, condition, paths)
		if err != nil {
			return err
		}
		cohorts = append(cohorts, cohort)
	}

	ttest, err := analysis.Compare(cohorts[0].Counts(), cohorts[1].Counts())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	rows := report.RowsFromCohorts(cohorts...)
	summaries := []analysis.Summary{cohorts[0].Summary, cohorts[1].Summary}

	countsPath := filepath.Join(cfg.Output.Dir, cfg.Output.CountsFile)
	if err := report.WriteSamplesCSV(countsPath, rows); err != nil {
		return err
	}
	summaryPath := filepath.Join(cfg.Output.Dir, cfg.Output.SummaryFile)
	if err := report.WriteSummaryCSV(summaryPath, summaries, ttest.PValue); err != nil {
		return err
	}
	plotPath := filepath.Join(cfg.Output.Dir, cfg.Output.PlotFile)
	if err := report.RenderPlot(plotPath, rows, []string{o.group1, o.group2}, cfg.Output.Colors); err != nil {
		return err
	}

	log.Info(component, "report written", map[string]interface{}{
		"counts":  countsPath,
		"summary": summaryPath,
		"plot":    plotPath,
	})

	if err := report.PrintSummary(out, summaries, ttest, rows); err != nil {
		return err
	}

	if cfg.Output.Show {
		if err := newViewer().Open(plotPath); err != nil {
			log.Warning(component, "could not display plot", map[string]interface{}{
				"plot":  plotPath,
				"error": err.Error(),
			})
		}
	}
	return nil
}
