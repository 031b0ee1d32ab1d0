// Package tempfile allocates collision-free temporary paths for export jobs
// and tracks the lifecycle of the intermediate artifacts written there.
//
// Names follow ws-<slug>-<pid><rand>.<ext>. Slugs are transliterated from
// the document title and memoized in an explicit SlugCache. Allocation is
// generate-and-check with a bounded number of attempts rather than locking;
// exhausting the bound is a hard failure. CleanStale sweeps leftovers from
// crashed runs under a file lock.
package tempfile
