package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"animewatch/internal/api"
	"animewatch/internal/catalog"
	"animewatch/internal/config"
	"animewatch/internal/logging"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) wantJSON() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withStore opens the catalog for the duration of fn.
func (c *commandContext) withStore(fn func(*catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) apiClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Paths.APIBind) == "" {
		return nil, errors.New("daemon API is disabled (paths.api_bind is empty)")
	}
	return api.NewClient(cfg.Paths.APIBind, cfg.Paths.APIToken), nil
}

// cliLogger writes warnings and errors to stderr so they never mix with command output.
func (c *commandContext) cliLogger(cmd *cobra.Command) *slog.Logger {
	logger, err := logging.New(logging.Options{
		Level:  "warn",
		Format: "console",
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// notifyDaemon asks a running daemon to drop its indices after a catalog write.
// An unreachable daemon is not an error; it rebuilds on its next start.
func (c *commandContext) notifyDaemon(cmd *cobra.Command) {
	client, err := c.apiClient()
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	if err := client.Invalidate(ctx); err != nil && !isUnavailable(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: daemon did not accept invalidation: %v\n", err)
	}
}

func wrapAPIError(err error, bind string) error {
	if isUnavailable(err) {
		return fmt.Errorf("connect to daemon: %s refused the connection; start it with `animewatch daemon start`", bind)
	}
	return err
}

func isUnavailable(err error) bool {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, context.DeadlineExceeded)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// titleArgs joins args into a single title, or reads one title per line from in when args is empty.
func titleArgs(args []string, in io.Reader) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}
	var titles []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			titles = append(titles, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}
	if len(titles) == 0 {
		return nil, errors.New("no titles given")
	}
	return titles, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
