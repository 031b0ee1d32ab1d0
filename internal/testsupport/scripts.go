package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Converter script bodies shared by conversion tests. Each receives the
// input path as $1 and the output path as $2.
const (
	CopyConverter    = "cp \"$1\" \"$2\"\n"
	FailingConverter = "echo \"conversion failed: unsupported input\" >&2\nexit 3\n"
	SilentConverter  = "exit 0\n"
	// HangingConverter leaves a partial output behind and never finishes.
	HangingConverter = "echo started >&2\n: > \"$2\"\nsleep 30\n"
)

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return target
}

// ListDir returns the names of the entries in dir, failing the test on error.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
