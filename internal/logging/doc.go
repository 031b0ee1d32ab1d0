// Package logging assembles structured slog loggers for the exporter.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and tags records with job and correlation identifiers taken from
// the context. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
