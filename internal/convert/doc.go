// Package convert turns fetched documents into e-book files.
//
// The Orchestrator builds an intermediate container, persists it under a
// temp path issued by the allocator, and runs the external converter against
// it under a wall-clock timeout. The persisted container is released on every
// exit path, and a timed-out converter is killed together with its process
// group. Formats come from a fixed registry; unknown keys are rejected before
// any work starts.
package convert
