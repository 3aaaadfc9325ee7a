package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Catalog contains configuration for the SQLite anime catalog.
type Catalog struct {
	// DatabasePath defaults to <data_dir>/catalog.db when empty.
	DatabasePath string `toml:"database_path"`
}

// Recognition contains knobs for the title recognition tracker.
type Recognition struct {
	// LogMisses emits an info line for every title that fails to match.
	LogMisses bool `toml:"log_misses"`
	// RecordHistory writes matched observations to the watch history table.
	RecordHistory bool `toml:"record_history"`
	// MinHistoryConfidence is the lowest confidence written to history. Default: 0.6
	MinHistoryConfidence float64 `toml:"min_history_confidence"`
	// HistoryLimit caps the number of rows returned by history listings.
	HistoryLimit int `toml:"history_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
	MaxSizeMB     int    `toml:"max_size_mb"`
}

// Metrics contains configuration for the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
}

// Config encapsulates all configuration values for animewatch.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Catalog: SQLite catalog location
//   - Recognition: tracker history and miss logging
//   - Logging: log format, level, rotation
//   - Metrics: Prometheus exporter
type Config struct {
	Paths       Paths       `toml:"paths"`
	Catalog     Catalog     `toml:"catalog"`
	Recognition Recognition `toml:"recognition"`
	Logging     Logging     `toml:"logging"`
	Metrics     Metrics     `toml:"metrics"`
}

// Load reads the configuration at path, or the first existing default
// location when path is empty. It returns the config, the path it settled on,
// and whether that file existed. A missing file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config %s: %s", path, strict.String())
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// locate resolves an explicit path as given. Without one it tries the user
// config path, then ./animewatch.toml, and falls back to the user path.
func locate(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := fileExists(expanded)
		if err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, exists, nil
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	localPath, err := filepath.Abs(localConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, localPath} {
		if ok, _ := fileExists(candidate); ok {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	default:
		return !info.IsDir(), nil
	}
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
