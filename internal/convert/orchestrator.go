package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"wsexport/internal/container"
	"wsexport/internal/logging"
	"wsexport/internal/services"
	"wsexport/internal/tempfile"
)

const (
	// DefaultTool is the converter binary looked up on PATH.
	DefaultTool = "ebook-convert"
	// DefaultTimeout bounds one converter run.
	DefaultTimeout = 120 * time.Second
)

// State is the position of a job in the pipeline.
type State string

const (
	StateBuilding   State = "building"
	StatePersisted  State = "persisted"
	StateConverting State = "converting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Job describes one conversion request.
type Job struct {
	ID              string
	Title           string
	Lang            string
	SourceFormat    string
	FormatKey       string
	ConverterParams string
	Timeout         time.Duration
}

// Event reports a state transition of a job.
type Event struct {
	Job          Job
	State        State
	ArtifactPath string
	// ArtifactState is set once the intermediate artifact exists.
	ArtifactState tempfile.State
	OutputPath    string
	Err           error
}

// Recorder receives job transitions. Errors are logged and never fail a job.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Orchestrator sequences container build, persistence, conversion, and
// cleanup.
type Orchestrator struct {
	builder   container.Builder
	allocator *tempfile.Allocator
	exec      Executor
	tool      string
	timeout   time.Duration
	recorder  Recorder
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithExecutor overrides the process executor.
func WithExecutor(exec Executor) Option {
	return func(o *Orchestrator) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithTool sets the converter binary.
func WithTool(tool string) Option {
	return func(o *Orchestrator) {
		if tool = strings.TrimSpace(tool); tool != "" {
			o.tool = tool
		}
	}
}

// WithTimeout sets the converter timeout. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRecorder attaches a transition recorder.
func WithRecorder(recorder Recorder) Option {
	return func(o *Orchestrator) { o.recorder = recorder }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New constructs an Orchestrator.
func New(builder container.Builder, allocator *tempfile.Allocator, opts ...Option) (*Orchestrator, error) {
	if builder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "new", "container builder is required", nil)
	}
	if allocator == nil {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "new", "temp file allocator is required", nil)
	}
	o := &Orchestrator{
		builder:   builder,
		allocator: allocator,
		exec:      commandExecutor{},
		tool:      DefaultTool,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "convert")
	return o, nil
}

// Create converts doc into the format named by formatKey and returns the
// path of the converted file. The intermediate container is deleted before
// Create returns, whatever the outcome.
func (o *Orchestrator) Create(ctx context.Context, doc container.Document, formatKey string) (outputPath string, err error) {
	format, err := SelectFormat(formatKey)
	if err != nil {
		return "", err
	}

	job := Job{
		ID:              uuid.NewString(),
		Title:           doc.Title,
		Lang:            doc.Lang,
		SourceFormat:    o.builder.Format(),
		FormatKey:       format.Key,
		ConverterParams: format.Params,
		Timeout:         o.timeout,
	}
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, o.logger)
	o.record(ctx, logger, Event{Job: job, State: StateBuilding})

	output, err := o.allocator.BuildTemporaryFileName(doc.Title, format.Extension)
	if err != nil {
		o.record(ctx, logger, Event{Job: job, State: StateFailed, Err: err})
		return "", err
	}

	built, err := o.builder.Build(ctx, doc)
	if err != nil {
		err = fmt.Errorf("build %s container: %w", job.SourceFormat, err)
		o.record(ctx, logger, Event{Job: job, State: StateFailed, Err: err})
		return "", err
	}

	artifact, err := o.allocator.Persist(built, doc.Title, job.SourceFormat, job.ID)
	if err != nil {
		if rmErr := os.Remove(built); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("failed to remove unpersisted container", logging.String("path", built), logging.Error(rmErr))
		}
		o.record(ctx, logger, Event{Job: job, State: StateFailed, Err: err})
		return "", err
	}
	o.record(ctx, logger, Event{Job: job, State: StatePersisted, ArtifactPath: artifact.Path, ArtifactState: artifact.State()})

	defer func() {
		releaseErr := artifact.Release()
		final := Event{Job: job, State: StateDone, ArtifactPath: artifact.Path, ArtifactState: artifact.State(), OutputPath: outputPath}
		if err != nil {
			final.State = StateFailed
			final.OutputPath = ""
			final.Err = err
		}
		if releaseErr != nil {
			logging.WarnWithContext(logger, "intermediate container not removed", "artifact_cleanup_failed",
				logging.String("path", artifact.Path),
				logging.Error(releaseErr),
				logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
				logging.String(logging.FieldImpact, "stale file left in temp_dir"),
			)
			if err != nil {
				err = errors.Join(err, releaseErr)
			}
			final.Err = errors.Join(final.Err, releaseErr)
		}
		o.record(ctx, logger, final)
	}()

	o.record(ctx, logger, Event{Job: job, State: StateConverting, ArtifactPath: artifact.Path, ArtifactState: artifact.State()})
	if err := o.convert(ctx, logger, artifact.Path, output, format); err != nil {
		return "", err
	}
	return output, nil
}

func (o *Orchestrator) convert(ctx context.Context, logger *slog.Logger, input, output string, format Format) error {
	args := append([]string{input, output}, strings.Fields(format.Params)...)

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	stderr, runErr := o.exec.Run(runCtx, o.tool, args)
	elapsed := time.Since(start)

	if runErr == nil {
		if _, statErr := os.Stat(output); statErr != nil {
			runErr = fmt.Errorf("converter produced no output: %w", statErr)
		}
	}
	if runErr != nil {
		convErr := &services.ConversionError{
			Tool:     o.tool,
			TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
			Stderr:   stderr,
			Err:      runErr,
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			convErr.ExitCode = exitErr.ExitCode()
		}
		if rmErr := os.Remove(output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("failed to remove partial output", logging.String("path", output), logging.Error(rmErr))
		}
		logger.Error("conversion failed",
			logging.String("format", format.Key),
			logging.Bool("timed_out", convErr.TimedOut),
			logging.Int("exit_code", convErr.ExitCode),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldEventType, "conversion_failed"),
		)
		return convErr
	}

	logger.Info("conversion finished",
		logging.String("format", format.Key),
		logging.String("output", output),
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldEventType, "conversion_done"),
	)
	return nil
}

func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, event Event) {
	logger.Debug("job transition", logging.String("state", string(event.State)))
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, event); err != nil {
		logger.Warn("failed to record job transition",
			logging.String("state", string(event.State)),
			logging.Error(err),
		)
	}
}
