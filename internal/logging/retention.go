package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PruneLogs removes rotated wsexport*.log files in dir whose modification time
// is older than retentionDays. The active log file is never removed. A
// retentionDays value of 0 disables pruning. It returns the removed paths.
func PruneLogs(logger *slog.Logger, dir string, retentionDays int, now time.Time) []string {
	if retentionDays <= 0 || dir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "wsexport*.log*"))
	if err != nil {
		return nil
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	active := filepath.Join(dir, LogFileName)

	var removed []string
	for _, path := range matches {
		if path == active {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on log_dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed = append(removed, path)
		if logger != nil {
			logger.Debug("log pruned", String("path", path), String(FieldEventType, "log_pruned"))
		}
	}
	return removed
}
