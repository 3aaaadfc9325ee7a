package daemonctl

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"animewatch/internal/api"
	"animewatch/internal/testsupport"
)

func TestProcessInfoRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.DaemonStatus{Running: true, PID: 4242})
	}))
	defer srv.Close()

	running, pid, err := ProcessInfo(context.Background(), api.NewClient(srv.URL, ""))
	if err != nil {
		t.Fatalf("ProcessInfo: %v", err)
	}
	if !running || pid != 4242 {
		t.Fatalf("expected running pid 4242, got %v %d", running, pid)
	}
}

func TestProcessInfoUnavailable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	running, _, err := ProcessInfo(context.Background(), api.NewClient(addr, ""))
	if err != nil {
		t.Fatalf("expected unavailable daemon to report not running, got %v", err)
	}
	if running {
		t.Fatal("expected not running")
	}
}

func TestProcessInfoAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, _, err := ProcessInfo(context.Background(), api.NewClient(srv.URL, "bad")); err == nil {
		t.Fatal("expected auth error to surface")
	}
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()
	good := testsupport.WriteFile(t, filepath.Join(dir, "good.pid"), "1234\n")
	bad := testsupport.WriteFile(t, filepath.Join(dir, "bad.pid"), "nope")

	if pid, err := ReadPID(good); err != nil || pid != 1234 {
		t.Fatalf("ReadPID(good) = %d, %v", pid, err)
	}
	if _, err := ReadPID(bad); err == nil {
		t.Fatal("expected error for malformed pid file")
	}
	if _, err := ReadPID(filepath.Join(dir, "missing.pid")); err == nil {
		t.Fatal("expected error for missing pid file")
	}
}

func TestPIDPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if got := PIDPath(cfg); !strings.HasPrefix(got, cfg.Paths.LogDir) {
		t.Fatalf("pid path %q not under log dir", got)
	}
}

func TestLaunchRejectsEmptyExecutable(t *testing.T) {
	if err := Launch("  ", LaunchOptions{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestLaunchArgs(t *testing.T) {
	tests := []struct {
		name string
		opts LaunchOptions
		want string
	}{
		{"defaults", LaunchOptions{}, "daemon"},
		{"config only", LaunchOptions{ConfigPath: "/etc/aw.toml"}, "daemon --config /etc/aw.toml"},
		{"both", LaunchOptions{ConfigPath: "/etc/aw.toml", LogLevel: " debug "}, "daemon --config /etc/aw.toml --log-level debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(launchArgs(tt.opts), " "); got != tt.want {
				t.Fatalf("launchArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWaitForAPIPollsUntilRunning(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "starting"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.DaemonStatus{Running: true, PID: 77})
	}))
	defer srv.Close()

	pid, err := WaitForAPI(context.Background(), api.NewClient(srv.URL, ""), 5*time.Second)
	if err != nil {
		t.Fatalf("WaitForAPI: %v", err)
	}
	if pid != 77 || calls.Load() < 3 {
		t.Fatalf("expected pid 77 after >= 3 polls, got pid=%d calls=%d", pid, calls.Load())
	}
}

func TestWaitForAPITimesOut(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	if _, err := WaitForAPI(context.Background(), api.NewClient(addr, ""), 300*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
}
