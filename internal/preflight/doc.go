// Package preflight provides readiness checks for the binaries, directories,
// and wiki endpoint the exporter depends on.
//
// The doctor command prints every result; export runs RunAll first and
// refuses to start when a required check fails.
package preflight
