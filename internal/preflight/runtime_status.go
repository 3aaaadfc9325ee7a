package preflight

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"animewatch/internal/config"
)

// CheckDaemonAPI verifies the daemon API is reachable and accepts the token.
func CheckDaemonAPI(ctx context.Context, bind, token string) Result {
	const name = "Daemon API"

	bind = strings.TrimSpace(bind)
	if bind == "" {
		return Result{Name: name, Detail: "Disabled"}
	}
	return checkEndpoint(ctx, name, "http://"+bind+"/api/stats", token)
}

// CheckMetricsFromConfig evaluates the metrics endpoint when metrics are enabled.
func CheckMetricsFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Metrics endpoint"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Metrics.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return checkEndpoint(ctx, name, "http://"+strings.TrimSpace(cfg.Metrics.Bind)+"/metrics", "")
}

// CheckDaemonFromConfig evaluates the daemon API configured in cfg.
func CheckDaemonFromConfig(ctx context.Context, cfg *config.Config) Result {
	if cfg == nil {
		return Result{Name: "Daemon API", Detail: "Unknown"}
	}
	return CheckDaemonAPI(ctx, cfg.Paths.APIBind, cfg.Paths.APIToken)
}

func checkEndpoint(ctx context.Context, name, url, token string) Result {
	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeRequestError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api token)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}
