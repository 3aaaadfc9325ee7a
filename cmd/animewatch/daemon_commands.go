package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"animewatch/internal/daemonctl"
	"animewatch/internal/daemonrun"
)

const (
	daemonStartTimeout = 10 * time.Second
	daemonStopGrace    = 10 * time.Second
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the animewatch daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}
	daemonCmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	daemonCmd.AddCommand(newDaemonStartCommand(ctx))
	daemonCmd.AddCommand(newDaemonStopCommand(ctx))
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))
	return daemonCmd
}

func newDaemonStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			result, err := daemonctl.EnsureStarted(cmd.Context(), client, exe,
				daemonctl.LaunchOptions{ConfigPath: ctx.configPath()}, daemonStartTimeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(out, "Daemon already running (pid %d)\n", result.PID)
			default:
				fmt.Fprintf(out, "Daemon started (pid %d)\n", result.PID)
			}
			return nil
		},
	}
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			result, err := daemonctl.StopAndTerminate(cmd.Context(), client, cfg, daemonStopGrace)
			out := cmd.OutOrStdout()
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Daemon did not exit in %s; killed pid %d\n", daemonStopGrace, result.PID)
				return nil
			}
			fmt.Fprintf(out, "Daemon stopped (pid %d)\n", result.PID)
			return nil
		},
	}
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			checkCtx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
			defer cancel()
			running, pid, err := daemonctl.ProcessInfo(checkCtx, client)
			if err != nil {
				return err
			}
			if ctx.wantJSON() {
				return writeJSON(cmd, map[string]any{"running": running, "pid": pid})
			}
			if running {
				fmt.Fprintf(cmd.OutOrStdout(), "Daemon running (pid %d)\n", pid)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
			}
			return nil
		},
	}
}
