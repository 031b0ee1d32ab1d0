package jobs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wsexport/internal/container"
	"wsexport/internal/convert"
	"wsexport/internal/jobs"
	"wsexport/internal/tempfile"
	"wsexport/internal/testsupport"
)

func sampleJob(id string) convert.Job {
	return convert.Job{ID: id, Title: "Le Horla", Lang: "fr", SourceFormat: "xhtml", FormatKey: "pdf-a5"}
}

func TestOpenCreatesLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJobs(t, cfg)

	if store.Path() != cfg.JobsDBPath() {
		t.Fatalf("unexpected path %q", store.Path())
	}
	if _, err := os.Stat(cfg.JobsDBPath()); err != nil {
		t.Fatalf("ledger file missing: %v", err)
	}
	list, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty ledger, got %d jobs", len(list))
	}

	// Reopening an initialized ledger keeps the schema.
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened := testsupport.MustOpenJobs(t, cfg)
	if _, err := reopened.List(context.Background(), 0); err != nil {
		t.Fatalf("List after reopen: %v", err)
	}
}

func TestRecordTracksTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJobs(t, cfg)
	ctx := context.Background()
	job := sampleJob("job-1")

	events := []convert.Event{
		{Job: job, State: convert.StateBuilding},
		{Job: job, State: convert.StatePersisted, ArtifactPath: "/tmp/ws-c0_le_horla-1.xhtml", ArtifactState: tempfile.StatePersisted},
		{Job: job, State: convert.StateConverting, ArtifactPath: "/tmp/ws-c0_le_horla-1.xhtml", ArtifactState: tempfile.StatePersisted},
		{Job: job, State: convert.StateDone, ArtifactPath: "/tmp/ws-c0_le_horla-1.xhtml", ArtifactState: tempfile.StateDeleted, OutputPath: "/tmp/out.pdf"},
	}
	for _, event := range events {
		if err := store.Record(ctx, event); err != nil {
			t.Fatalf("Record %s: %v", event.State, err)
		}
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected job")
	}
	if got.State != convert.StateDone || got.OutputPath != "/tmp/out.pdf" || got.Format != "pdf-a5" {
		t.Fatalf("unexpected job %+v", got)
	}
	if got.ArtifactState != tempfile.StateDeleted || got.ArtifactPath == "" {
		t.Fatalf("unexpected artifact %q %q", got.ArtifactPath, got.ArtifactState)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("unexpected timestamps %v %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestRecordKeepsError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJobs(t, cfg)
	ctx := context.Background()
	job := sampleJob("job-err")

	if err := store.Record(ctx, convert.Event{Job: job, State: convert.StateFailed, Err: errors.New("exited with status 3")}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := store.Get(ctx, job.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if !got.Failed() || got.Error != "exited with status 3" {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestRecordRequiresID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJobs(t, cfg)
	if err := store.Record(context.Background(), convert.Event{State: convert.StateBuilding}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestGetMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJobs(t, cfg)
	got, err := store.Get(context.Background(), "nope")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestSummarizeCountsLeakedArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJobs(t, cfg)
	ctx := context.Background()

	record := func(event convert.Event) {
		t.Helper()
		if err := store.Record(ctx, event); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	record(convert.Event{Job: sampleJob("a"), State: convert.StateDone, ArtifactPath: "/tmp/a", ArtifactState: tempfile.StateDeleted})
	record(convert.Event{Job: sampleJob("b"), State: convert.StateFailed, ArtifactPath: "/tmp/b", ArtifactState: tempfile.StatePersisted})
	record(convert.Event{Job: sampleJob("c"), State: convert.StateConverting, ArtifactPath: "/tmp/c", ArtifactState: tempfile.StatePersisted})

	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := jobs.Summary{Total: 3, Done: 1, Failed: 1, InProgress: 1, LeakedArtifacts: 1}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
}

func TestOrchestratorRecordsIntoLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConverterScript(testsupport.CopyConverter))
	store := testsupport.MustOpenJobs(t, cfg)

	allocator, err := tempfile.NewAllocator(cfg.Paths.TempDir, nil)
	if err != nil {
		t.Fatalf("NewAllocator: %v", err)
	}
	orch, err := convert.New(container.XHTMLBuilder{Dir: cfg.Paths.TempDir}, allocator,
		convert.WithTool(cfg.Convert.EbookConvert),
		convert.WithTimeout(10*time.Second),
		convert.WithRecorder(store),
	)
	if err != nil {
		t.Fatalf("convert.New: %v", err)
	}

	doc := container.Document{Title: "Le Horla", Lang: "fr", Content: "<p>texte</p>"}
	output, err := orch.Create(context.Background(), doc, "txt")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one job, got %d", len(list))
	}
	job := list[0]
	if job.State != convert.StateDone || job.OutputPath != output {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.ArtifactState != tempfile.StateDeleted || filepath.Ext(job.ArtifactPath) != ".xhtml" {
		t.Fatalf("unexpected artifact %q %q", job.ArtifactPath, job.ArtifactState)
	}
}
