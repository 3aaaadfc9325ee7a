package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"animewatch/internal/catalog"
	"animewatch/internal/config"
	"animewatch/internal/daemon"
	"animewatch/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
	// Ready, when set, is invoked once the daemon is serving.
	Ready func(*daemon.Daemon)
}

// Run starts the animewatch daemon and blocks until ctx is cancelled or a
// termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		copied := *cfg
		copied.Logging.Level = level
		cfg = &copied
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	logger, closer, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	logStartupSnapshot(logger, cfg)
	pidPath := filepath.Join(cfg.Paths.LogDir, "animewatchd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := catalog.Open(cfg)
	if err != nil {
		logging.ErrorWithContext(logger, "open catalog store", "catalog_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `animewatch preflight` to check the database"),
		)
		return err
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the lock file and that the API bind is free"),
			logging.String(logging.FieldImpact, "titles will not be recognized"),
		)
		return err
	}
	if opts.Ready != nil {
		opts.Ready(d)
	}

	<-signalCtx.Done()
	logger.Info("animewatch daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logStartupSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("database_path", cfg.Catalog.DatabasePath),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Bool("api_token_present", strings.TrimSpace(cfg.Paths.APIToken) != ""),
		logging.Bool("record_history", cfg.Recognition.RecordHistory),
		logging.Float64("min_history_confidence", cfg.Recognition.MinHistoryConfidence),
		logging.Bool("metrics_enabled", cfg.Metrics.Enabled),
		logging.String("metrics_bind", cfg.Metrics.Bind),
	)
}
