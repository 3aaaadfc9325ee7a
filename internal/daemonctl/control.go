package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"animewatch/internal/api"
	"animewatch/internal/config"
)

// ErrDaemonNotRunning indicates the daemon API is unavailable.
var ErrDaemonNotRunning = errors.New("daemon not running")

const pollInterval = 200 * time.Millisecond

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State StartState
	PID   int
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// Launch starts a detached animewatch daemon process in its own session so it
// survives the invoking shell.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return errors.New("resolve executable: executable path is empty")
	}
	proc := exec.Command(executablePath, launchArgs(opts)...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

func launchArgs(opts LaunchOptions) []string {
	args := []string{"daemon"}
	for _, flag := range [][2]string{{"--config", opts.ConfigPath}, {"--log-level", opts.LogLevel}} {
		if v := strings.TrimSpace(flag[1]); v != "" {
			args = append(args, flag[0], v)
		}
	}
	return args
}

// ProcessInfo reports whether the daemon API answers and the daemon PID. An
// unreachable API is "not running", not an error.
func ProcessInfo(ctx context.Context, client *api.Client) (bool, int, error) {
	status, err := client.Status(ctx)
	switch {
	case err == nil:
		return status.Running, status.PID, nil
	case isDaemonUnavailable(err):
		return false, 0, nil
	default:
		return false, 0, err
	}
}

// WaitForAPI polls until the daemon reports running and returns its PID.
func WaitForAPI(ctx context.Context, client *api.Client, timeout time.Duration) (int, error) {
	pid, err := pollUntil(ctx, client, timeout, true)
	if err != nil {
		return 0, fmt.Errorf("daemon failed to start: %w", err)
	}
	return pid, nil
}

// pollUntil polls ProcessInfo until the running state equals want.
func pollUntil(ctx context.Context, client *api.Client, timeout time.Duration, want bool) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		running, pid, err := ProcessInfo(ctx, client)
		if ctx.Err() == nil && err == nil && running == want {
			return pid, nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			if lastErr == nil {
				lastErr = fmt.Errorf("timed out after %s", timeout)
			}
			return 0, lastErr
		case <-ticker.C:
		}
	}
}

// EnsureStarted launches the daemon unless its API already answers.
func EnsureStarted(ctx context.Context, client *api.Client, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	running, pid, err := ProcessInfo(ctx, client)
	if err != nil {
		return StartResult{}, err
	}
	if running {
		return StartResult{State: StartStateAlreadyRunning, PID: pid}, nil
	}
	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}
	pid, err = WaitForAPI(ctx, client, waitTimeout)
	if err != nil {
		return StartResult{}, err
	}
	return StartResult{State: StartStateStarted, PID: pid}, nil
}

// PIDPath returns the pid file the daemon writes in its log directory.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "animewatchd.pid")
}

// ReadPID parses the pid file at path.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file %q", path)
	}
	return pid, nil
}

// StopAndTerminate sends SIGTERM to the daemon and force-kills it if it is
// still answering after gracePeriod.
func StopAndTerminate(ctx context.Context, client *api.Client, cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	running, pid, err := ProcessInfo(ctx, client)
	if err != nil {
		return StopResult{}, err
	}
	if !running {
		return StopResult{}, ErrDaemonNotRunning
	}
	pidPath := PIDPath(cfg)
	if pid <= 0 {
		if pid, err = ReadPID(pidPath); err != nil {
			return StopResult{}, fmt.Errorf("unable to determine daemon pid: %w", err)
		}
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return StopResult{}, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	result := StopResult{PID: pid}
	if _, err := pollUntil(ctx, client, gracePeriod, false); err == nil {
		return result, nil
	}
	if err := proc.Kill(); err != nil {
		return result, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	_ = os.Remove(pidPath)
	_ = os.Remove(cfg.LockPath())
	result.ForcedKill = true
	return result, nil
}

func isDaemonUnavailable(err error) bool {
	var apiErr *api.Error
	switch {
	case err == nil, errors.As(err, &apiErr):
		return false
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ENOENT), errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return strings.Contains(err.Error(), "connection refused")
	}
}
