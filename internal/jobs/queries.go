package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wsexport/internal/convert"
	"wsexport/internal/tempfile"
)

const selectJobs = `
SELECT j.id, j.title, j.lang, j.source_format, j.format, j.state,
       j.output_path, j.error, j.created_at, j.updated_at,
       a.path, a.state
FROM jobs j
LEFT JOIN artifacts a ON a.job_id = j.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var (
		job                         Job
		state                       string
		output, errText             sql.NullString
		created, updated            string
		artifactPath, artifactState sql.NullString
	)
	if err := row.Scan(&job.ID, &job.Title, &job.Lang, &job.SourceFormat, &job.Format, &state,
		&output, &errText, &created, &updated, &artifactPath, &artifactState); err != nil {
		return Job{}, err
	}
	job.State = convert.State(state)
	job.OutputPath = output.String
	job.Error = errText.String
	job.ArtifactPath = artifactPath.String
	job.ArtifactState = tempfile.State(artifactState.String)
	job.CreatedAt = parseTime(created)
	job.UpdatedAt = parseTime(updated)
	return job, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Get returns the job with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, selectJobs+` WHERE j.id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &job, nil
}

// List returns the most recent jobs first. A non-positive limit lists all.
func (s *Store) List(ctx context.Context, limit int) ([]Job, error) {
	query := selectJobs + ` ORDER BY j.created_at DESC, j.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Summarize counts jobs by outcome.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	jobs, err := s.List(ctx, 0)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	for _, job := range jobs {
		summary.Total++
		switch job.State {
		case convert.StateDone:
			summary.Done++
		case convert.StateFailed:
			summary.Failed++
		default:
			summary.InProgress++
		}
		if job.Finished() && job.ArtifactState == tempfile.StatePersisted {
			summary.LeakedArtifacts++
		}
	}
	return summary, nil
}

// Prune deletes finished jobs last updated before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec(ctx,
		`DELETE FROM jobs WHERE state IN (?, ?) AND updated_at < ?`,
		string(convert.StateDone), string(convert.StateFailed), cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	return res.RowsAffected()
}
