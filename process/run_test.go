package process_test

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/process"
)

func TestRun_Echo(t *testing.T) {
	c, err := newSpawner().Run(context.Background(), process.NewSpec("echo", "hello", "world")).Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Out() != "hello world" {
		t.Errorf("expected 'hello world', got %q", c.Out())
	}
	if c.RunID == "" || c.PID <= 0 {
		t.Errorf("expected run id and pid, got %q %d", c.RunID, c.PID)
	}
	if strings.Join(c.Argv, " ") != "echo hello world" {
		t.Errorf("unexpected argv %v", c.Argv)
	}
}

func TestRun_CommandFailed(t *testing.T) {
	spec := process.NewSpec("sh", "-c", "echo partial; echo broken >&2; exit 42")
	r := newSpawner().Run(context.Background(), spec)

	if !process.IsCommandFailed(r.Err()) {
		t.Fatalf("expected COMMAND_FAILED, got %v", r.Err())
	}
	appErr, _ := apperrors.AsAppError(r.Err())
	for _, want := range []string{
		"Command Failed (ec=42)",
		"\n\n----- STDOUT\npartial",
		"\n\n----- STDERR\nbroken",
	} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in message %q", want, appErr.Message)
		}
	}
	if appErr.Details["exit_code"] != 42 {
		t.Errorf("expected exit_code detail 42, got %v", appErr.Details["exit_code"])
	}
}

func TestRunUnchecked_AcceptsFailure(t *testing.T) {
	c, err := newSpawner().RunUnchecked(context.Background(), process.NewSpec("sh", "-c", "echo oops >&2; exit 2")).Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status.Code != 2 || c.ErrOut() != "oops" {
		t.Errorf("got code %d stderr %q", c.Status.Code, c.ErrOut())
	}
}

func TestRun_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	r := newSpawner().Run(ctx, process.NewSpec("sleep", "10").WithGracePeriod(500*time.Millisecond))
	if !process.IsTimeout(r.Err()) {
		t.Fatalf("expected TIMEOUT, got %v", r.Err())
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("process took too long to stop: %v", time.Since(start))
	}
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newSpawner()
	r := s.Run(ctx, process.NewSpec("true"))
	if !process.IsTimeout(r.Err()) {
		t.Fatalf("expected TIMEOUT, got %v", r.Err())
	}
	if s.Launched() != 0 {
		t.Error("no process should start on a canceled context")
	}
}

func TestRun_PropagatesLaunchErrors(t *testing.T) {
	r := process.Run(context.Background(), process.Spec{})
	if !process.IsInvalidSpec(r.Err()) {
		t.Errorf("expected INVALID_SPEC, got %v", r.Err())
	}
	r = process.RunUnchecked(context.Background(), process.NewSpec("/nonexistent/binary-xyz"))
	if !process.IsSpawnFailed(r.Err()) {
		t.Errorf("expected SPAWN_FAILED, got %v", r.Err())
	}
}

func TestRun_Duration(t *testing.T) {
	c := process.Run(context.Background(), process.NewSpec("sleep", "0.1")).Unwrap()
	if c.Duration < 50*time.Millisecond {
		t.Fatalf("duration too short: %v", c.Duration)
	}
}

func TestCommandExists(t *testing.T) {
	if !process.CommandExists("sh") {
		t.Error("expected sh to exist")
	}
	if process.CommandExists("binary-xyz-not-on-path") || process.CommandExists("") {
		t.Error("expected missing commands to be reported")
	}
}
