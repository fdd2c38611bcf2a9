package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/alveoli-tools/internal/analysis"
	"github.com/ironsheep/alveoli-tools/internal/config"
	"github.com/ironsheep/alveoli-tools/internal/detection"
	"github.com/ironsheep/alveoli-tools/internal/logger"
)

// pipelineFlags override the counting settings of the config file.
type pipelineFlags struct {
	size      int
	positions []int
	minArea   float64
	backend   string
	debugDir  string
	workers   int
}

func (f *pipelineFlags) bind(c *cobra.Command) {
	d := config.DefaultConfig()

	c.Flags().IntVar(&f.size, "subsample-size", d.Sampling.Size, "Side length of each square subsample window in pixels")
	c.Flags().IntSliceVar(&f.positions, "subsample-positions", d.Sampling.Positions, "Window anchors as a flat x1,y1,x2,y2,... list")
	c.Flags().Float64Var(&f.minArea, "min-area", d.Detection.Structures.MinArea, "Minimum contour area for a structure to count")
	c.Flags().StringVar(&f.backend, "backend", d.Analysis.Backend, "Detection backend: "+strings.Join(detection.Backends(), "|"))
	c.Flags().StringVar(&f.debugDir, "debug-dir", "", "Write per-window masks and window overlays here")
	c.Flags().IntVar(&f.workers, "workers", d.Analysis.Workers, "Images counted in parallel")
}

// apply copies the flags the user set onto cfg.
func (f *pipelineFlags) apply(c *cobra.Command, cfg *config.Config) {
	flags := c.Flags()
	if flags.Changed("subsample-size") {
		cfg.Sampling.Size = f.size
	}
	if flags.Changed("subsample-positions") {
		cfg.Sampling.Positions = f.positions
	}
	if flags.Changed("min-area") {
		cfg.Detection.Structures.MinArea = f.minArea
	}
	if flags.Changed("backend") {
		cfg.Analysis.Backend = f.backend
	}
	if flags.Changed("debug-dir") {
		cfg.Output.DebugDir = f.debugDir
	}
	if flags.Changed("workers") {
		cfg.Analysis.Workers = f.workers
	}
}

// newCounter builds the window counter cfg describes.
func newCounter(cfg *config.Config, log logger.Logger) (*analysis.Counter, error) {
	windows, err := cfg.Windows()
	if err != nil {
		return nil, err
	}
	backend, err := detection.NewBackend(cfg.Analysis.Backend, cfg.Detection)
	if err != nil {
		return nil, err
	}

	opts := []analysis.CounterOption{analysis.WithLogger(log)}
	if cfg.Output.DebugDir != "" {
		opts = append(opts, analysis.WithDebugDir(cfg.Output.DebugDir))
	}
	return analysis.NewCounter(backend, windows, opts...), nil
}
