package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ironsheep/alveoli-tools/internal/config"
	"github.com/ironsheep/alveoli-tools/internal/logger"
)

// BuildInfo is the version information stamped in at build time.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Execute runs the command line and exits with status 1 on failure.
func Execute(info BuildInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(info)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd(info BuildInfo) *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "alveoli",
		Short:        "Alveoli density quantification for stained tissue tiles",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error (default from $"+logger.EnvLevel+" or the config file)")

	cmd.AddCommand(
		analyzeCmd(g),
		countCmd(g),
		replotCmd(),
		serveCmd(g, info),
		versionCmd(info),
		configCmd(),
	)
	return cmd
}

// setup loads the configuration and builds the logger for cmd. The log level
// comes from --log-level, then the environment, then the config file.
func (g *globalOptions) setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	if g.configPath != "" {
		if _, err := os.Stat(g.configPath); err != nil {
			return nil, nil, fmt.Errorf("config file: %w", err)
		}
	}
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, nil, err
	}

	name := g.logLevel
	if name == "" && os.Getenv(logger.EnvLevel) == "" {
		name = cfg.Logging.Level
	}
	level, err := logger.ParseLevel(name)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger.NewConsoleLogger(cmd.ErrOrStderr(), level), nil
}
