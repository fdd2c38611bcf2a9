package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/alveoli-tools/internal/detection"
	"github.com/ironsheep/alveoli-tools/internal/server"
)

func serveCmd(g *globalOptions, info BuildInfo) *cobra.Command {
	var pipeline pipelineFlags

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the counting pipeline as MCP tools over stdio",
		Long: "Reads JSON-RPC 2.0 requests from stdin, one per line, and writes responses\n" +
			"to stdout. Logs go to stderr.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.setup(cmd)
			if err != nil {
				return err
			}
			pipeline.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			windows, err := cfg.Windows()
			if err != nil {
				return err
			}
			backend, err := detection.NewBackend(cfg.Analysis.Backend, cfg.Detection)
			if err != nil {
				return err
			}

			srv := server.New(backend, windows,
				server.WithLogger(log),
				server.WithWorkers(cfg.Analysis.Workers),
				server.WithVersion(info.Version),
			)
			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	pipeline.bind(c)
	return c
}
