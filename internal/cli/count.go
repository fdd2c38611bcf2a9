package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/alveoli-tools/internal/analysis"
)

func countCmd(g *globalOptions) *cobra.Command {
	var pipeline pipelineFlags
	var format string

	c := &cobra.Command{
		Use:   "count IMAGE...",
		Short: "Count alveoli in single images and show the per-window breakdown",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.setup(cmd)
			if err != nil {
				return err
			}
			pipeline.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			counter, err := newCounter(cfg, log)
			if err != nil {
				return err
			}

			results := make([]*analysis.ImageCount, 0, len(args))
			for _, path := range args {
				result, err := counter.CountFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				results = append(results, result)
			}
			return printCounts(cmd.OutOrStdout(), results, format)
		},
	}

	pipeline.bind(c)
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func printCounts(w io.Writer, results []*analysis.ImageCount, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "pretty", "":
		for _, r := range results {
			fmt.Fprintf(w, "%s: %d\n", r.Sample, r.Total)
			for _, wc := range r.Windows {
				clipped := ""
				if wc.Clipped {
					clipped = " (clipped)"
				}
				fmt.Fprintf(w, "  window %d %s: %d counted, %d below min area%s\n",
					wc.Index, wc.Window, wc.Count, wc.Rejected, clipped)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}
