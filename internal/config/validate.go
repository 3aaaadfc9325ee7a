package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRecognition(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if err := validateBind("paths.api_bind", c.Paths.APIBind); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRecognition() error {
	if c.Recognition.MinHistoryConfidence < 0 || c.Recognition.MinHistoryConfidence > 1 {
		return errors.New("recognition.min_history_confidence must be between 0 and 1")
	}
	if c.Recognition.HistoryLimit < 0 {
		return errors.New("recognition.history_limit must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if !c.Metrics.Enabled {
		return nil
	}
	if err := validateBind("metrics.bind", c.Metrics.Bind); err != nil {
		return err
	}
	if c.Metrics.Bind == c.Paths.APIBind {
		return errors.New("metrics.bind must differ from paths.api_bind")
	}
	return nil
}

func validateBind(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must be set", key)
	}
	if _, _, err := net.SplitHostPort(value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
