package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"wsexport/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithConverterScript installs body as an executable shell script and
// configures it as the converter.
func WithConverterScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.EbookConvert = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "ebook-convert", body)
	}
}

// WithExecTimeout sets the converter timeout in seconds.
func WithExecTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.ExecTimeout = seconds
	}
}

// WithStubbedBinaries writes no-op executables for the provided names and
// prepends their directory to PATH for the duration of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ebook-convert"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.TempDir)
}
