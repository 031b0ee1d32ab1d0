package testsupport

import (
	"testing"

	"wsexport/internal/config"
	"wsexport/internal/jobs"
)

// MustOpenJobs opens the job ledger for tests and registers cleanup.
func MustOpenJobs(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
