package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show recognition counters from the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			status, err := client.Status(cmd.Context())
			if err != nil {
				return wrapAPIError(err, cfg.Paths.APIBind)
			}
			if ctx.wantJSON() {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon running: %s (pid %d)\n", yesNo(status.Running), status.PID)
			fmt.Fprintf(out, "Catalog: %s\n", status.DatabasePath)
			if status.StartedAt != "" {
				fmt.Fprintf(out, "Started: %s\n", status.StartedAt)
			}
			fmt.Fprintln(out)
			renderStats(cmd, status.Stats)
			return nil
		},
	}
}
