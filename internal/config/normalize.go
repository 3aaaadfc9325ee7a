package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeRecognition()
	c.normalizeLogging()
	c.normalizeMetrics()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if value, ok := os.LookupEnv("ANIMEWATCH_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIToken = strings.TrimSpace(value)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	var err error
	if strings.TrimSpace(c.Catalog.DatabasePath) == "" {
		c.Catalog.DatabasePath = filepath.Join(c.Paths.DataDir, defaultDatabaseFile)
	}
	if c.Catalog.DatabasePath, err = expandPath(c.Catalog.DatabasePath); err != nil {
		return fmt.Errorf("catalog.database_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeRecognition() {
	if c.Recognition.HistoryLimit <= 0 {
		c.Recognition.HistoryLimit = defaultHistoryLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
}

func (c *Config) normalizeMetrics() {
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	if c.Metrics.Bind == "" {
		c.Metrics.Bind = defaultMetricsBind
	}
}
