package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"animewatch/internal/catalog"
	"animewatch/internal/config"
	"animewatch/internal/logging"
	"animewatch/internal/metrics"
	"animewatch/internal/recognition"
	"animewatch/internal/tracker"
)

// Daemon owns the tracker and its network listeners and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	tracker *tracker.Tracker

	registry      *prometheus.Registry
	api           *apiServer
	metricsServer *metrics.Server

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	StartedAt    time.Time
	Stats        recognition.Stats
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and catalog store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.New(registry)
	trk := tracker.New(store, cfg, logger, tracker.WithObserver(recorder))
	registry.MustRegister(
		metrics.NewRecognitionCollector(trk),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		tracker:  trk,
		registry: registry,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	if cfg.Metrics.Enabled {
		d.metricsServer = metrics.NewServer(cfg.Metrics.Bind, registry, logger)
	}
	return d, nil
}

// Start acquires the daemon lock, warms the recognition engine and opens the listeners.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another animewatch daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.tracker.Start(runCtx)
	if err := d.tracker.Repopulate(runCtx); err != nil {
		logging.WarnWithContext(d.logger, "recognition warmup failed", "engine_warmup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check catalog database access"),
			logging.String(logging.FieldImpact, "engine will retry loading on the next recognition"),
		)
	}

	if err := d.api.start(runCtx); err != nil {
		d.tracker.Stop()
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api: %w", err)
	}
	if d.metricsServer != nil {
		listener, err := net.Listen("tcp", d.cfg.Metrics.Bind)
		if err != nil {
			d.api.stop()
			d.tracker.Stop()
			cancel()
			_ = d.lock.Unlock()
			return fmt.Errorf("metrics listen: %w", err)
		}
		go func() { _ = d.metricsServer.Serve(listener) }()
	}

	d.cancel = cancel
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("animewatch daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.APIAddr()),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop closes the listeners, stops the tracker and releases the daemon lock.
// A stopped daemon cannot be started again.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.api.stop()
	if d.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = d.metricsServer.Shutdown(shutdownCtx)
		cancel()
	}
	d.tracker.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("animewatch daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Tracker exposes the recognition tracker.
func (d *Daemon) Tracker() *tracker.Tracker {
	return d.tracker
}

// Registry returns the Prometheus registry fed by the tracker.
func (d *Daemon) Registry() *prometheus.Registry {
	return d.registry
}

// APIAddr returns the bound API address, or the configured bind before Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Status returns the current daemon status. Stats are zero when the tracker is not running.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		StartedAt:    d.startedAt,
	}
	if status.Running {
		if stats, err := d.tracker.Stats(ctx); err == nil {
			status.Stats = stats
		}
	}
	return status
}
