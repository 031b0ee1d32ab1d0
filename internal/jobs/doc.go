// Package jobs persists a ledger of conversion jobs in SQLite.
//
// Each job row tracks the pipeline state reported by the convert
// orchestrator; the artifacts table records the intermediate container path
// and whether it has been deleted. The ledger backs the history command and
// lets an operator confirm that no artifact outlived its job.
package jobs
