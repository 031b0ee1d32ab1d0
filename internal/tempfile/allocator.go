package tempfile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"wsexport/internal/logging"
	"wsexport/internal/services"
)

// DefaultMaxAttempts bounds name generation before allocation gives up.
const DefaultMaxAttempts = 100

// NamePrefix starts every generated file name.
const NamePrefix = "ws-"

// Allocator issues unique paths inside one temp directory.
type Allocator struct {
	dir         string
	slugs       *SlugCache
	exists      func(path string) bool
	suffix      func() string
	pid         int
	maxAttempts int
	logger      *slog.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithExistsFunc overrides the existence probe used during allocation.
func WithExistsFunc(fn func(path string) bool) Option {
	return func(a *Allocator) {
		if fn != nil {
			a.exists = fn
		}
	}
}

// WithSuffixFunc overrides the random suffix source.
func WithSuffixFunc(fn func() string) Option {
	return func(a *Allocator) {
		if fn != nil {
			a.suffix = fn
		}
	}
}

// WithPID overrides the process identifier embedded in names.
func WithPID(pid int) Option {
	return func(a *Allocator) { a.pid = pid }
}

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) { a.logger = logger }
}

// NewAllocator creates the temp directory if needed and returns an allocator
// rooted there. A nil cache gets a fresh one.
func NewAllocator(dir string, slugs *SlugCache, opts ...Option) (*Allocator, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tempfile", "new allocator", "temp directory is required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp directory %q: %w", dir, err)
	}
	if slugs == nil {
		slugs = NewSlugCache()
	}
	a := &Allocator{
		dir:         dir,
		slugs:       slugs,
		exists:      pathExists,
		suffix:      randomSuffix,
		pid:         os.Getpid(),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "tempfile")
	return a, nil
}

// Dir returns the directory names are allocated in.
func (a *Allocator) Dir() string {
	return a.dir
}

// BuildTemporaryFileName returns an unused path of the form
// <dir>/ws-<slug>-<pid><rand>.<ext>. It probes at most maxAttempts candidates
// and fails with a ResourceExhaustedError when every one is taken.
func (a *Allocator) BuildTemporaryFileName(title, ext string) (string, error) {
	slug := a.slugs.Encode(title)
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		name := NamePrefix + slug + "-" + strconv.Itoa(a.pid) + a.suffix()
		if ext != "" {
			name += "." + ext
		}
		path := filepath.Join(a.dir, name)
		if !a.exists(path) {
			return path, nil
		}
		a.logger.Debug("temp name collision", logging.String("path", path), logging.Int("attempt", attempt))
	}
	return "", &services.ResourceExhaustedError{Resource: "temporary file name", Attempts: a.maxAttempts}
}

// Persist moves src onto a freshly allocated path and returns the artifact
// that owns it. Cross-device moves fall back to copy and delete.
func (a *Allocator) Persist(src, title, ext, jobID string) (*Artifact, error) {
	artifact := &Artifact{JobID: jobID, state: StateCreated, remove: a.RemoveFile}
	dest, err := a.BuildTemporaryFileName(title, ext)
	if err != nil {
		return nil, err
	}
	if err := MoveFile(src, dest); err != nil {
		return nil, fmt.Errorf("persist %s: %w", src, err)
	}
	artifact.Path = dest
	artifact.state = StatePersisted
	return artifact, nil
}

// RemoveFile deletes path synchronously. Failures are returned, including a
// path that no longer exists.
func (a *Allocator) RemoveFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove temp file: %w", err)
	}
	a.logger.Debug("temp file removed", logging.String("path", path))
	return nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	if err == nil {
		return true
	}
	// Anything other than a clean "not found" is treated as taken.
	return !errors.Is(err, os.ErrNotExist)
}

func randomSuffix() string {
	return strconv.FormatUint(uint64(rand.Uint32()), 10)
}

// MoveFile renames src to dest, copying across filesystems when rename
// reports EXDEV.
func MoveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil || !errors.Is(err, unix.EXDEV) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return os.Remove(src)
}
