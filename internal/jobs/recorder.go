package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wsexport/internal/convert"
)

// Record upserts the job row for event and, once an artifact exists, its
// artifact row. It satisfies convert.Recorder.
func (s *Store) Record(ctx context.Context, event convert.Event) error {
	if event.Job.ID == "" {
		return errors.New("record job: missing job id")
	}
	now := s.timestamp()

	var errText sql.NullString
	if event.Err != nil {
		errText = sql.NullString{String: event.Err.Error(), Valid: true}
	}
	var output sql.NullString
	if event.OutputPath != "" {
		output = sql.NullString{String: event.OutputPath, Valid: true}
	}

	job := event.Job
	_, err := s.exec(ctx, `
INSERT INTO jobs (id, title, lang, source_format, format, state, output_path, error, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    state = excluded.state,
    output_path = COALESCE(excluded.output_path, jobs.output_path),
    error = COALESCE(excluded.error, jobs.error),
    updated_at = excluded.updated_at`,
		job.ID, job.Title, job.Lang, job.SourceFormat, job.FormatKey, string(event.State), output, errText, now, now,
	)
	if err != nil {
		return fmt.Errorf("record job %s: %w", job.ID, err)
	}

	if event.ArtifactPath == "" || event.ArtifactState == "" {
		return nil
	}
	_, err = s.exec(ctx, `
INSERT INTO artifacts (job_id, path, state, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(job_id) DO UPDATE SET
    path = excluded.path,
    state = excluded.state,
    updated_at = excluded.updated_at`,
		job.ID, event.ArtifactPath, string(event.ArtifactState), now,
	)
	if err != nil {
		return fmt.Errorf("record artifact for job %s: %w", job.ID, err)
	}
	return nil
}
