package process

import (
	"context"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/observability"
	"github.com/bbugyi200/bugyi/result"
)

// Spawner starts child processes. It is the only part of the package that
// creates OS processes. A Spawner is safe for concurrent use.
type Spawner struct {
	log      *logger.Logger
	metrics  *observability.ProcessMetrics
	tracer   trace.Tracer
	defaults *Defaults

	launched atomic.Int64
}

// Option configures a Spawner.
type Option func(*Spawner)

// WithLogger sets the logger. The default is the global logger tagged with
// the "process" component.
func WithLogger(l *logger.Logger) Option {
	return func(s *Spawner) { s.log = l }
}

// WithMetrics records spawn and exit metrics on m.
func WithMetrics(m *observability.ProcessMetrics) Option {
	return func(s *Spawner) { s.metrics = m }
}

// WithTracer sets the tracer used for spawn and run spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Spawner) { s.tracer = t }
}

// WithDefaults fills unset Spec fields from d before every spawn.
func WithDefaults(d Defaults) Option {
	return func(s *Spawner) { s.defaults = &d }
}

// NewSpawner creates a Spawner.
func NewSpawner(opts ...Option) *Spawner {
	s := &Spawner{}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NopProcessMetrics()
	}
	return s
}

var defaultSpawner = NewSpawner()

// Spawn starts spec with the default Spawner.
func Spawn(ctx context.Context, spec Spec) result.Result[*Process] {
	return defaultSpawner.Spawn(ctx, spec)
}

// Launched returns how many OS processes this Spawner has started.
func (s *Spawner) Launched() int64 { return s.launched.Load() }

// Spawn validates spec and starts it. The returned Process is Running with
// empty output buffers. ctx carries the trace for the spawn span only;
// ending it does not affect the child.
func (s *Spawner) Spawn(ctx context.Context, spec Spec) result.Result[*Process] {
	ctx, span := s.startSpan(ctx, observability.SpanProcessSpawn)
	defer span.End()

	spec = s.resolve(spec)
	log := s.logger().WithContext(ctx)
	observability.SetSpanAttribute(ctx, observability.AttrBinary, spec.Binary)

	if err := spec.Validate(); err != nil {
		s.metrics.RecordSpawn(ctx, spec.Binary, observability.SpawnInvalid)
		observability.SetSpanError(ctx, err)
		log.Debug("invalid command spec", logger.MergeWithError(
			logger.Fields(logger.FieldBinary, spec.Binary), err))
		return result.Err[*Process](err)
	}

	p := &Process{
		id:      uuid.NewString(),
		spec:    spec,
		log:     s.logger(),
		metrics: s.metrics,
		done:    make(chan struct{}),
	}

	cmd := exec.Command(spec.Binary, spec.Args...) //nolint:gosec // running caller-supplied commands is the point
	cmd.Dir = spec.Dir
	cmd.Env = spec.environ()
	cmd.WaitDelay = spec.waitDelay()
	if err := p.wire(cmd); err != nil {
		p.closePipes()
		return s.spawnFailed(ctx, log, spec, err)
	}

	p.started = time.Now()
	if err := cmd.Start(); err != nil {
		p.closePipes()
		return s.spawnFailed(ctx, log, spec, err)
	}
	s.launched.Add(1)
	p.startDrains()

	p.cmd = cmd
	p.pid = cmd.Process.Pid
	p.log = p.log.WithFields(logger.Fields(logger.FieldRunID, p.id))
	go p.reap()

	s.metrics.RecordSpawn(ctx, spec.Binary, observability.SpawnLaunched)
	observability.SetSpanAttribute(ctx, observability.AttrPID, p.pid)
	observability.SetSpanAttribute(ctx, observability.AttrRunID, p.id)
	log.Debug("process started", logger.Fields(
		logger.FieldRunID, p.id,
		logger.FieldPID, p.pid,
		logger.FieldBinary, spec.Binary,
		logger.FieldArgs, spec.Args,
	))

	return result.Ok(p)
}

// wire connects the child's standard streams as the Spec asks.
func (p *Process) wire(cmd *exec.Cmd) error {
	spec := p.spec

	switch spec.Stdin {
	case StreamDefault, StreamPipe:
		switch {
		case spec.Input != nil:
			cmd.Stdin = spec.Input
		case spec.Stdin == StreamPipe:
			w, err := cmd.StdinPipe()
			if err != nil {
				return err
			}
			p.stdin = w
		}
	case StreamInherit:
		cmd.Stdin = os.Stdin
	}

	switch spec.Stdout {
	case StreamDefault, StreamPipe:
		p.stdout = NewCapture(SourceStdout, spec.MaxOutput, spec.OnOutput)
		w, err := p.pipe(p.stdout)
		if err != nil {
			return err
		}
		cmd.Stdout = w
	case StreamInherit:
		cmd.Stdout = os.Stdout
	}

	switch spec.Stderr {
	case StreamDefault, StreamPipe:
		p.stderr = NewCapture(SourceStderr, spec.MaxOutput, spec.OnOutput)
		w, err := p.pipe(p.stderr)
		if err != nil {
			return err
		}
		cmd.Stderr = w
	case StreamInherit:
		cmd.Stderr = os.Stderr
	}
	return nil
}

func (s *Spawner) spawnFailed(ctx context.Context, log *logger.Logger, spec Spec, cause error) result.Result[*Process] {
	err := apperrors.SpawnFailed(spec.Binary, cause)
	s.metrics.RecordSpawn(ctx, spec.Binary, observability.SpawnFailed)
	observability.SetSpanError(ctx, err)
	log.Warn("process failed to start", logger.MergeWithError(
		logger.Fields(logger.FieldBinary, spec.Binary, logger.FieldArgs, spec.Args), cause))
	return result.Err[*Process](err)
}

func (s *Spawner) resolve(spec Spec) Spec {
	spec = spec.clone()
	if s.defaults != nil {
		spec = s.defaults.Apply(spec)
	}
	return spec
}

func (s *Spawner) logger() *logger.Logger {
	if s.log != nil {
		return s.log
	}
	return logger.WithComponent("process")
}

func (s *Spawner) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s.tracer != nil {
		return s.tracer.Start(ctx, name)
	}
	return observability.StartSpan(ctx, name)
}
