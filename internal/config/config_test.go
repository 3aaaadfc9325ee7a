package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"animewatch/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ANIMEWATCH_API_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "animewatch")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Catalog.DatabasePath != filepath.Join(wantData, "catalog.db") {
		t.Fatalf("unexpected database path: %q", cfg.Catalog.DatabasePath)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7517" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Recognition.MinHistoryConfidence != 0.6 {
		t.Fatalf("unexpected min history confidence: %v", cfg.Recognition.MinHistoryConfidence)
	}
	if !cfg.Recognition.RecordHistory {
		t.Fatal("expected history recording enabled by default")
	}
	if cfg.Metrics.Enabled {
		t.Fatal("expected metrics disabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ANIMEWATCH_API_TOKEN", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"data_dir": "~/anime",
			"api_bind": "127.0.0.1:9000",
		},
		"recognition": map[string]any{
			"log_misses":             true,
			"min_history_confidence": 0.8,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "anime") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "animewatch", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Catalog.DatabasePath != filepath.Join(tempHome, "anime", "catalog.db") {
		t.Fatalf("database path should follow data dir, got %q", cfg.Catalog.DatabasePath)
	}
	if !cfg.Recognition.LogMisses || cfg.Recognition.MinHistoryConfidence != 0.8 {
		t.Fatalf("unexpected recognition section: %+v", cfg.Recognition)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging values normalized, got %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestAPITokenFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANIMEWATCH_API_TOKEN", "  secret  ")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Fatalf("expected token from env, got %q", cfg.Paths.APIToken)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "confidence above one",
			mutate:  func(c *config.Config) { c.Recognition.MinHistoryConfidence = 1.5 },
			wantErr: "min_history_confidence",
		},
		{
			name:    "bad log level",
			mutate:  func(c *config.Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad api bind",
			mutate:  func(c *config.Config) { c.Paths.APIBind = "localhost" },
			wantErr: "paths.api_bind",
		},
		{
			name: "metrics collides with api",
			mutate: func(c *config.Config) {
				c.Metrics.Enabled = true
				c.Metrics.Bind = c.Paths.APIBind
			},
			wantErr: "metrics.bind",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.DatabasePath = filepath.Join(base, "db", "catalog.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{"data", "logs", "db"} {
		if info, err := os.Stat(filepath.Join(base, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, err=%v", dir, err)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/anime/catalog.db", filepath.Join(home, "anime", "catalog.db")},
		{"/srv/./animewatch/", "/srv/animewatch"},
	}
	for _, tt := range tests {
		got, err := config.ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
