package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wsexport/internal/convert"
	"wsexport/internal/jobs"
	"wsexport/internal/tempfile"
)

const historyErrorWidth = 80

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent export jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJobs()
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No export jobs recorded")
				return nil
			}
			summary, err := store.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderHistory(list, shouldColorize(out)))
			fmt.Fprintf(out, "%s: %d done, %d failed, %d in progress\n",
				pluralize(summary.Total, "job"), summary.Done, summary.Failed, summary.InProgress)
			if summary.LeakedArtifacts > 0 {
				fmt.Fprintf(out, "%d finished jobs left an intermediate file behind; run `wsexport cleanup`\n", summary.LeakedArtifacts)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of jobs to show (0 for all)")
	return cmd
}

func renderHistory(list []jobs.Job, colorize bool) string {
	headers := []string{"ID", "Updated", "Title", "Format", "State", "Artifact", "Detail"}
	rows := make([][]string, 0, len(list))
	for _, job := range list {
		detail := job.OutputPath
		if job.Failed() {
			detail = truncate(job.Error, historyErrorWidth)
		}
		rows = append(rows, []string{
			shortID(job.ID),
			formatTimestamp(job.UpdatedAt),
			job.Title,
			job.Format,
			paint(string(job.State), stateColor(job.State), colorize),
			artifactLabel(job),
			detail,
		})
	}
	return renderTable(headers, rows)
}

func stateColor(state convert.State) string {
	switch state {
	case convert.StateDone:
		return ansiGreen
	case convert.StateFailed:
		return ansiRed
	default:
		return ansiYellow
	}
}

func artifactLabel(job jobs.Job) string {
	switch job.ArtifactState {
	case "":
		return "-"
	case tempfile.StatePersisted:
		if job.Finished() {
			return "leaked"
		}
		return "present"
	default:
		return string(job.ArtifactState)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
