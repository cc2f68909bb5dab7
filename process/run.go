package process

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/observability"
	"github.com/bbugyi200/bugyi/result"
)

// Completed is a command that has run to the end.
type Completed struct {
	RunID    string
	PID      int
	Argv     []string
	Status   ExitStatus
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Out returns stdout with surrounding whitespace trimmed.
func (c *Completed) Out() string { return strings.TrimSpace(string(c.Stdout)) }

// ErrOut returns stderr with surrounding whitespace trimmed.
func (c *Completed) ErrOut() string { return strings.TrimSpace(string(c.Stderr)) }

// Run runs spec to completion with the default Spawner.
func Run(ctx context.Context, spec Spec) result.Result[*Completed] {
	return defaultSpawner.Run(ctx, spec)
}

// RunUnchecked runs spec to completion with the default Spawner and accepts
// any exit status.
func RunUnchecked(ctx context.Context, spec Spec) result.Result[*Completed] {
	return defaultSpawner.RunUnchecked(ctx, spec)
}

// Run spawns spec and waits for it. A non-zero exit or a kill yields a
// COMMAND_FAILED error whose message carries the command's output. When ctx
// ends first the child is terminated and a TIMEOUT error is returned.
func (s *Spawner) Run(ctx context.Context, spec Spec) result.Result[*Completed] {
	return result.AndThen(s.RunUnchecked(ctx, spec), func(c *Completed) result.Result[*Completed] {
		if c.Status.Success() {
			return result.Ok(c)
		}
		return result.Err[*Completed](
			apperrors.CommandFailed(c.Argv, c.Status.Code, c.Out(), c.ErrOut()).
				WithDetail("run_id", c.RunID).
				WithDetail("state", c.Status.State.String()).
				WithDetail("status", c.Status.String()).
				WithDetail("signal", c.Status.SignalNumber()),
		)
	})
}

// RunUnchecked is Run without the exit status check.
func (s *Spawner) RunUnchecked(ctx context.Context, spec Spec) result.Result[*Completed] {
	ctx, span := s.startSpan(ctx, observability.SpanProcessRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrArgs, spec.Argv())

	if err := ctx.Err(); err != nil {
		appErr := apperrors.Timeout(spec.String()).WithCause(err)
		observability.SetSpanError(ctx, appErr)
		return result.Err[*Completed](appErr)
	}

	r := result.AndThen(s.Spawn(ctx, spec), func(p *Process) result.Result[*Completed] {
		return s.await(ctx, p)
	})
	if c, ok := r.Value(); ok {
		observability.SetSpanAttribute(ctx, observability.AttrExitCode, c.Status.Code)
		observability.SetSpanAttribute(ctx, observability.AttrState, c.Status.State.String())
	} else {
		observability.SetSpanError(ctx, r.Err())
	}
	return r
}

func (s *Spawner) await(ctx context.Context, p *Process) result.Result[*Completed] {
	select {
	case <-p.Done():
	case <-ctx.Done():
		p.log.Warn("context ended, terminating process", logger.Fields(
			logger.FieldPID, p.pid,
			logger.FieldBinary, p.spec.Binary,
		))
		if r := p.Terminate(context.WithoutCancel(ctx)); !IsAlreadyTerminated(r.Err()) {
			return result.Err[*Completed](p.timeoutError(ctx.Err()))
		}
	}

	return result.Map(p.Wait(), func(status ExitStatus) *Completed {
		return &Completed{
			RunID:    p.id,
			PID:      p.pid,
			Argv:     p.spec.Argv(),
			Status:   status,
			Stdout:   p.Stdout(),
			Stderr:   p.Stderr(),
			Duration: status.Duration,
		}
	})
}
