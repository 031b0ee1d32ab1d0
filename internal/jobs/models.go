package jobs

import (
	"time"

	"wsexport/internal/convert"
	"wsexport/internal/tempfile"
)

// Job is one row of the ledger.
type Job struct {
	ID            string
	Title         string
	Lang          string
	SourceFormat  string
	Format        string
	State         convert.State
	OutputPath    string
	Error         string
	ArtifactPath  string
	ArtifactState tempfile.State
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Failed reports whether the job ended in failure.
func (j Job) Failed() bool {
	return j.State == convert.StateFailed
}

// Finished reports whether the job reached a terminal state.
func (j Job) Finished() bool {
	return j.State == convert.StateDone || j.State == convert.StateFailed
}

// Summary counts jobs per state.
type Summary struct {
	Total      int
	Done       int
	Failed     int
	InProgress int
	// LeakedArtifacts counts finished jobs whose artifact was never deleted.
	LeakedArtifacts int
}
