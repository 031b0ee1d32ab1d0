package tempfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"wsexport/internal/logging"
)

// LockFileName guards concurrent sweeps of the same directory.
const LockFileName = ".sweep.lock"

// ErrSweepInProgress is returned when another process holds the sweep lock.
var ErrSweepInProgress = errors.New("temp directory sweep already in progress")

// CleanStaleResult contains the outcome of a stale file sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes ws-* files in dir last modified before now-maxAge.
// Files are left alone while another process holds the sweep lock.
func CleanStale(ctx context.Context, dir string, maxAge time.Duration, logger *slog.Logger) (CleanStaleResult, error) {
	result := CleanStaleResult{}
	logger = logging.NewComponentLogger(logger, "tempfile")

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("read temp directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !locked {
		return result, ErrSweepInProgress
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release sweep lock", logging.Error(err))
		}
	}()

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), NamePrefix) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale temp file", "temp_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale temp file",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
			logging.String(logging.FieldEventType, "temp_cleanup"),
		)
	}

	return result, nil
}
