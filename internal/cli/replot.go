package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/alveoli-tools/internal/config"
	"github.com/ironsheep/alveoli-tools/internal/report"
)

func replotCmd() *cobra.Command {
	var countsPath, plotPath string
	var colors []string

	c := &cobra.Command{
		Use:   "replot",
		Short: "Render the box plot again from a counts CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := report.ReadSamplesCSV(countsPath)
			if err != nil {
				return err
			}

			order := conditionOrder(rows)
			if len(colors) < len(order) {
				return fmt.Errorf("%d conditions in %s but only %d colors", len(order), countsPath, len(colors))
			}
			if err := report.RenderPlot(plotPath, rows, order, colors); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plotPath)
			return nil
		},
	}

	d := config.DefaultConfig()
	c.Flags().StringVar(&countsPath, "counts", d.Output.CountsFile, "Counts CSV written by analyze")
	c.Flags().StringVar(&plotPath, "out", d.Output.PlotFile, "Plot file to write")
	c.Flags().StringSliceVar(&colors, "colors", d.Output.Colors, "Plot color per condition, in file order")
	return c
}

// conditionOrder lists the conditions of rows in order of first appearance.
func conditionOrder(rows []report.Row) []string {
	seen := make(map[string]bool)
	var order []string
	for _, r := range rows {
		if !seen[r.Condition] {
			seen[r.Condition] = true
			order = append(order, r.Condition)
		}
	}
	return order
}
