package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/alveoli-tools/internal/config"
)

const defaultConfigFile = "alveoli.yaml"

func configCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	c.AddCommand(configInitCmd())
	return c
}

func configInitCmd() *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the default configuration to PATH (default " + defaultConfigFile + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return c
}
