package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wsexport/internal/logging"
	"wsexport/internal/tempfile"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var pruneJobs bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove stale temp files, old logs, and optionally old job history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			out := cmd.OutOrStdout()
			logger := ctx.log()

			result, err := tempfile.CleanStale(cmd.Context(), cfg.Paths.TempDir, olderThan, logger)
			if err != nil {
				if errors.Is(err, tempfile.ErrSweepInProgress) {
					fmt.Fprintln(out, "Another cleanup is running; temp files skipped")
				} else {
					return err
				}
			}
			fmt.Fprintf(out, "Removed %s from %s\n", pluralize(len(result.Removed), "temp file"), cfg.Paths.TempDir)
			for _, failure := range result.Errors {
				fmt.Fprintf(out, "  failed to remove %s: %v\n", failure.Path, failure.Error)
			}

			if days := cfg.Logging.RetentionDays; days > 0 {
				pruned := logging.PruneLogs(logger, cfg.Paths.LogDir, days, time.Now())
				fmt.Fprintf(out, "Removed %s older than %d days\n", pluralize(len(pruned), "log file"), days)
			}

			if pruneJobs {
				store, err := ctx.openJobs()
				if err != nil {
					return err
				}
				defer store.Close()
				count, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %s from history\n", pluralize(int(count), "job"))
			}

			if len(result.Errors) > 0 {
				return fmt.Errorf("%s could not be removed", pluralize(len(result.Errors), "temp file"))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Age after which temp files count as stale")
	cmd.Flags().BoolVar(&pruneJobs, "jobs", false, "Also prune finished jobs older than --older-than from history")
	return cmd
}
