package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"animewatch/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var checkDaemon bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, catalog database and optionally the daemon endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if checkDaemon {
				results = append(results,
					preflight.CheckDaemonFromConfig(cmd.Context(), cfg),
					preflight.CheckMetricsFromConfig(cmd.Context(), cfg),
				)
			}

			if ctx.wantJSON() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					status := "OK"
					if !r.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{r.Name, status, r.Detail})
				}
				printTable(cmd.OutOrStdout(), cols("Check", "Status", "Detail"), rows)
			}

			if !preflight.AllPassed(results) {
				return errors.New("preflight checks failed")
			}
			if !ctx.wantJSON() {
				fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkDaemon, "daemon", false, "Also check the daemon API and metrics endpoints")
	return cmd
}
