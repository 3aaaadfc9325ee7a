package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"animewatch/internal/catalog"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCatalog verifies the catalog database opens at the current schema.
// A missing database passes when its directory is writable, since the first
// write creates it.
func CheckCatalog(ctx context.Context, path string) Result {
	const name = "Catalog database"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "database path not configured"}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		dir := filepath.Dir(path)
		if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create in %s: %v)", path, dir, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := catalog.OpenPath(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", path, summarizeOpenError(err))}
	}
	defer store.Close()

	count, err := store.Count(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: count: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d anime)", path, count)}
}

func summarizeOpenError(err error) string {
	if errors.Is(err, catalog.ErrSchemaMismatch) {
		return "database was written by a newer animewatch"
	}
	return err.Error()
}

// summarizeRequestError produces a human-readable summary for endpoint check failures.
func summarizeRequestError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "not reachable"
	}
	return err.Error()
}
