package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"animewatch/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the daemon log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFilePath()
			out := cmd.OutOrStdout()

			chunk, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}
			for _, line := range chunk.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(chunk.Lines) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "No log output at %s\n", path)
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, chunk.Offset, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	return cmd
}
