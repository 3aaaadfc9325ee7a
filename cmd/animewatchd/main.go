package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"animewatch/internal/config"
	"animewatch/internal/daemonrun"
)

func newRootCommand() *cobra.Command {
	var configPath, logLevel string

	cmd := &cobra.Command{
		Use:           "animewatchd",
		Short:         "animewatch recognition daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "animewatchd:", err)
		os.Exit(1)
	}
}
