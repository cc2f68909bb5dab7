package process

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/observability"
	"github.com/bbugyi200/bugyi/result"
)

// Process is the handle of one spawned child. The reaper goroutine started
// by Spawn collects the child's exit status, so dropping a Process never
// leaves a zombie behind.
type Process struct {
	id      string
	pid     int
	spec    Spec
	cmd     *exec.Cmd
	started time.Time

	stdout  *Capture
	stderr  *Capture
	stdin   io.WriteCloser
	outputs []outputPipe
	drains  sync.WaitGroup

	log     *logger.Logger
	metrics *observability.ProcessMetrics

	state         atomic.Int32
	killRequested atomic.Bool
	done          chan struct{}

	// Written once by reap before done is closed.
	status  ExitStatus
	waitErr error
}

// ID returns the unique run ID assigned at spawn.
func (p *Process) ID() string { return p.id }

// PID returns the OS process ID.
func (p *Process) PID() int { return p.pid }

// Spec returns the Spec the child was started from.
func (p *Process) Spec() Spec { return p.spec.clone() }

// Done returns a channel that is closed once the child has been reaped and
// its output drained, or Spec.WaitDelay after the reap when a descendant
// still holds the output pipes open.
func (p *Process) Done() <-chan struct{} { return p.done }

// Poll returns the current state without blocking.
func (p *Process) Poll() State { return State(p.state.Load()) }

// Wait blocks until Done and returns the child's exit status. Every call
// returns the same status.
func (p *Process) Wait() result.Result[ExitStatus] {
	<-p.done
	if p.waitErr != nil {
		return result.Err[ExitStatus](apperrors.WaitFailed(p.pid, p.waitErr))
	}
	return result.Ok(p.status)
}

// WaitContext is Wait bounded by ctx. When ctx ends while the child is still
// running it is killed and reaped, and a TIMEOUT error is returned. A child
// that had already exited yields its exit status.
func (p *Process) WaitContext(ctx context.Context) result.Result[ExitStatus] {
	select {
	case <-p.done:
		return p.Wait()
	case <-ctx.Done():
	}
	if k := p.Kill(); IsAlreadyTerminated(k.Err()) {
		return p.Wait()
	}
	<-p.done
	return result.Err[ExitStatus](p.timeoutError(ctx.Err()))
}

// Status returns the exit status if the child has been reaped.
func (p *Process) Status() (ExitStatus, bool) {
	select {
	case <-p.done:
		return p.status, true
	default:
		return ExitStatus{}, false
	}
}

// Stdout returns a copy of the standard output captured so far. It is nil
// when stdout was not captured.
func (p *Process) Stdout() []byte {
	if p.stdout == nil {
		return nil
	}
	return p.stdout.Bytes()
}

// Stderr returns a copy of the standard error captured so far. It is nil
// when stderr was not captured.
func (p *Process) Stderr() []byte {
	if p.stderr == nil {
		return nil
	}
	return p.stderr.Bytes()
}

// Truncated reports whether either stream exceeded Spec.MaxOutput.
func (p *Process) Truncated() bool {
	return (p.stdout != nil && p.stdout.Truncated()) || (p.stderr != nil && p.stderr.Truncated())
}

// StdinPipe returns the write end of the child's stdin. It is available only
// when stdin is StreamPipe and no Spec.Input was given. Close it to signal
// end of input.
func (p *Process) StdinPipe() (io.WriteCloser, bool) {
	return p.stdin, p.stdin != nil
}

// Kill terminates the child immediately.
func (p *Process) Kill() result.Result[struct{}] {
	p.killRequested.Store(true)
	return p.Signal(os.Kill)
}

// Signal delivers sig to the child. It fails with ALREADY_TERMINATED once
// the child has exited, including an exit the reaper has not collected yet.
func (p *Process) Signal(sig os.Signal) result.Result[struct{}] {
	if p.Poll().Terminal() || childExited(p.pid) {
		return result.Err[struct{}](apperrors.AlreadyTerminated(p.pid))
	}
	if err := p.cmd.Process.Signal(sig); err != nil {
		appErr := signalError(p.pid, "signal "+sig.String(), err)
		p.log.Debug("signal not delivered", logger.MergeWithError(p.fields(), appErr))
		return result.Err[struct{}](appErr)
	}
	p.log.Debug("signal delivered", logger.Fields(
		logger.FieldRunID, p.id,
		logger.FieldPID, p.pid,
		logger.FieldSignal, sig.String(),
	))
	return result.Ok(struct{}{})
}

// Terminate asks the child to stop with SIGTERM and kills it if it is still
// running after Spec.GracePeriod or when ctx ends. It returns the
// final exit status.
func (p *Process) Terminate(ctx context.Context) result.Result[ExitStatus] {
	if r := p.Signal(terminateSignal); r.IsErr() {
		if !IsUnsupported(r.Err()) {
			return result.Err[ExitStatus](r.Err())
		}
		if k := p.Kill(); k.IsErr() {
			return result.Err[ExitStatus](k.Err())
		}
		return p.Wait()
	}

	timer := time.NewTimer(p.spec.gracePeriod())
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		_ = p.Kill()
	case <-ctx.Done():
		_ = p.Kill()
	}
	return p.Wait()
}

// reap waits for the child, publishes its state, then waits for the output
// drains before closing done.
func (p *Process) reap() {
	err := p.cmd.Wait()
	ps := p.cmd.ProcessState

	status := ExitStatus{Code: -1, State: Exited, Duration: time.Since(p.started)}
	var exitErr *exec.ExitError
	switch {
	case ps == nil:
		p.waitErr = err
	default:
		status.Code = ps.ExitCode()
		status.State, status.Signal = exitState(ps, p.killRequested.Load())
		switch {
		case err == nil, errors.As(err, &exitErr):
		case errors.Is(err, exec.ErrWaitDelay):
			p.log.Warn("stdin copy still running after exit", p.fields())
		default:
			p.waitErr = err
		}
	}

	p.status = status
	p.state.Store(int32(status.State))
	p.awaitDrains()
	close(p.done)

	p.metrics.RecordExit(context.Background(), p.spec.Binary, status.State.String(), status.Duration)

	fields := p.fields()
	fields[logger.FieldExitCode] = status.Code
	fields[logger.FieldState] = status.State.String()
	fields[logger.FieldDuration] = status.Duration.Milliseconds()
	if p.waitErr != nil {
		p.log.Warn("wait on process failed", logger.MergeWithError(fields, p.waitErr))
		return
	}
	p.log.Debug("process exited", fields)
}

// outputPipe is a captured stream: the child writes w, a drain goroutine
// copies r into capture.
type outputPipe struct {
	r, w    *os.File
	capture *Capture
}

// pipe creates the OS pipe behind c and returns the end the child writes.
func (p *Process) pipe(c *Capture) (*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	p.outputs = append(p.outputs, outputPipe{r: r, w: w, capture: c})
	return w, nil
}

// startDrains closes the parent's write ends and copies each read end into
// its capture until every writer, descendants included, has closed it.
func (p *Process) startDrains() {
	for _, o := range p.outputs {
		_ = o.w.Close()
		p.drains.Add(1)
		go func(o outputPipe) {
			defer p.drains.Done()
			_, _ = io.Copy(o.capture, o.r)
			_ = o.r.Close()
		}(o)
	}
}

// closePipes releases the pipes of a child that never started.
func (p *Process) closePipes() {
	for _, o := range p.outputs {
		_ = o.r.Close()
		_ = o.w.Close()
	}
}

// awaitDrains waits for the drains. A descendant that inherited the pipes
// can keep them open past the child's exit, so after Spec.WaitDelay the read
// ends are closed and the output captured so far is kept.
func (p *Process) awaitDrains() {
	drained := make(chan struct{})
	go func() {
		p.drains.Wait()
		close(drained)
	}()

	timer := time.NewTimer(p.spec.waitDelay())
	defer timer.Stop()
	select {
	case <-drained:
		return
	case <-timer.C:
	}

	p.log.Warn("output pipes still open after exit", p.fields())
	for _, o := range p.outputs {
		_ = o.r.Close()
	}
	<-drained
}

func (p *Process) timeoutError(cause error) *apperrors.AppError {
	return apperrors.Timeout(p.spec.String()).
		WithCause(cause).
		WithDetail("pid", p.pid)
}

func (p *Process) fields() map[string]interface{} {
	return logger.Fields(
		logger.FieldRunID, p.id,
		logger.FieldPID, p.pid,
		logger.FieldBinary, p.spec.Binary,
	)
}
