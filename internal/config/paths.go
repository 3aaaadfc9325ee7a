package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	userConfigPath  = "~/.config/animewatch/config.toml"
	localConfigName = "animewatch.toml"
	lockFileName    = "animewatchd.lock"
	logFileName     = "animewatch.log"
)

// DefaultConfigPath returns the absolute per-user configuration path.
func DefaultConfigPath() (string, error) {
	return expandPath(userConfigPath)
}

// ExpandPath resolves a leading ~ and returns a cleaned absolute path. The
// empty string is returned unchanged.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimLeft(path[1:], `/\`))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	return abs, nil
}

// EnsureDirectories creates the data, log and catalog directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, catalogDir(c.Catalog.DatabasePath)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func catalogDir(dbPath string) string {
	if dbPath == "" {
		return ""
	}
	return filepath.Dir(dbPath)
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, lockFileName)
}

// LogFilePath returns the rotating log file written by the daemon.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, logFileName)
}
