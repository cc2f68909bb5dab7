package process_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/process"
)

func newSpawner() *process.Spawner {
	return process.NewSpawner(process.WithLogger(logger.Nop()))
}

func spawn(t *testing.T, s *process.Spawner, spec process.Spec) *process.Process {
	t.Helper()
	p, err := s.Spawn(context.Background(), spec).Get()
	if err != nil {
		t.Fatalf("spawn %s: %v", spec, err)
	}
	return p
}

func TestSpawn_ExitCode(t *testing.T) {
	s := newSpawner()
	for _, code := range []int{0, 1, 3, 42} {
		p := spawn(t, s, process.NewSpec("sh", "-c", "exit "+strconv.Itoa(code)))
		status := p.Wait().Unwrap()
		if status.Code != code {
			t.Errorf("expected exit code %d, got %d", code, status.Code)
		}
		if status.State != process.Exited {
			t.Errorf("expected Exited, got %s", status.State)
		}
		if status.Success() != (code == 0) {
			t.Errorf("Success() = %v for code %d", status.Success(), code)
		}
	}
}

func TestSpawn_StartsRunningWithEmptyBuffers(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("sleep", "30"))
	defer p.Kill()

	if p.Poll() != process.Running {
		t.Errorf("expected Running, got %s", p.Poll())
	}
	if len(p.Stdout()) != 0 || len(p.Stderr()) != 0 {
		t.Error("expected empty buffers right after spawn")
	}
	if p.PID() <= 0 || p.ID() == "" {
		t.Errorf("expected a pid and run id, got %d %q", p.PID(), p.ID())
	}
	if _, ok := p.Status(); ok {
		t.Error("Status should not be available while running")
	}
}

func TestWait_Idempotent(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("sh", "-c", "exit 7"))

	first := p.Wait().Unwrap()
	second := p.Wait().Unwrap()
	if first != second {
		t.Errorf("Wait returned %+v then %+v", first, second)
	}
	status, ok := p.Status()
	if !ok || status != first {
		t.Errorf("Status() = %+v, %v", status, ok)
	}
}

func TestWait_CapturesExactOutput(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("printf", "%s", "hello\nworld"))
	p.Wait().Unwrap()

	if got := string(p.Stdout()); got != "hello\nworld" {
		t.Errorf("stdout = %q", got)
	}
	if got := p.Stderr(); len(got) != 0 {
		t.Errorf("stderr should be empty, got %q", got)
	}
}

func TestWait_SeparateStreams(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("sh", "-c", "echo out; echo err >&2; echo out2"))
	p.Wait().Unwrap()

	if got := string(p.Stdout()); got != "out\nout2\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := string(p.Stderr()); got != "err\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestSpawn_DrainsWithoutWait(t *testing.T) {
	const n = 70000
	p := spawn(t, newSpawner(), process.NewSpec("sh", "-c", "dd if=/dev/zero bs=1000 count=70 2>/dev/null"))

	deadline := time.Now().Add(10 * time.Second)
	for p.Poll() == process.Running {
		if time.Now().After(deadline) {
			_ = p.Kill()
			t.Fatal("child blocked on a full pipe")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := len(p.Stdout()); got != n {
		t.Errorf("expected %d bytes, got %d", n, got)
	}
}

func TestSpawn_NonexistentBinary(t *testing.T) {
	s := newSpawner()
	for _, bin := range []string{"/nonexistent/binary-xyz", "binary-xyz-not-on-path"} {
		r := s.Spawn(context.Background(), process.NewSpec(bin))
		if r.IsOk() {
			t.Fatalf("%s: expected failure", bin)
		}
		if !process.IsSpawnFailed(r.Err()) {
			t.Errorf("%s: expected SPAWN_FAILED, got %v", bin, r.Err())
		}
	}
	if s.Launched() != 0 {
		t.Errorf("expected no launched processes, got %d", s.Launched())
	}
}

func TestSpawn_InvalidSpecCreatesNoProcess(t *testing.T) {
	s := newSpawner()
	spawn(t, s, process.NewSpec("true")).Wait().Unwrap()
	before := s.Launched()

	r := s.Spawn(context.Background(), process.Spec{})
	if !process.IsInvalidSpec(r.Err()) {
		t.Fatalf("expected INVALID_SPEC, got %v", r.Err())
	}
	r = s.Spawn(context.Background(), process.NewSpec("true").WithDir("/nonexistent/dir-xyz"))
	if !process.IsInvalidSpec(r.Err()) {
		t.Fatalf("expected INVALID_SPEC for a missing dir, got %v", r.Err())
	}

	if s.Launched() != before {
		t.Errorf("invalid specs launched %d processes", s.Launched()-before)
	}
}

func TestKill_AfterExit(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("true"))
	p.Wait().Unwrap()

	r := p.Kill()
	if !process.IsAlreadyTerminated(r.Err()) {
		t.Fatalf("expected ALREADY_TERMINATED, got %v", r.Err())
	}
	if !process.IsAlreadyTerminated(p.Kill().Err()) {
		t.Error("a second Kill should report the same failure")
	}
}

func TestKill_Running(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("sleep", "30"))

	if r := p.Kill(); r.IsErr() {
		t.Fatalf("kill: %v", r.Err())
	}
	status := p.Wait().Unwrap()
	if status.State != process.Killed {
		t.Errorf("expected Killed, got %s", status.State)
	}
	if p.Poll() != process.Killed {
		t.Errorf("Poll after kill = %s", p.Poll())
	}
}

func TestWaitContext_Timeout(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("sleep", "30"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := p.WaitContext(ctx)
	if !process.IsTimeout(r.Err()) {
		t.Fatalf("expected TIMEOUT, got %v", r.Err())
	}
	if !p.Poll().Terminal() {
		t.Error("child should be reaped after the timeout")
	}
}

func TestWaitContext_Completes(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("true"))
	status, err := p.WaitContext(context.Background()).Get()
	if err != nil || !status.Success() {
		t.Fatalf("expected success, got %+v, %v", status, err)
	}
}

func TestSpawn_Input(t *testing.T) {
	spec := process.NewSpec("cat").WithInput(strings.NewReader("from stdin"))
	p := spawn(t, newSpawner(), spec)
	p.Wait().Unwrap()

	if got := string(p.Stdout()); got != "from stdin" {
		t.Errorf("stdout = %q", got)
	}
}

func TestSpawn_StdinPipe(t *testing.T) {
	spec := process.NewSpec("cat").WithStreams(process.StreamPipe, process.StreamDefault, process.StreamDefault)
	p := spawn(t, newSpawner(), spec)

	w, ok := p.StdinPipe()
	if !ok {
		t.Fatal("expected a stdin pipe")
	}
	_, _ = io.WriteString(w, "piped")
	_ = w.Close()
	p.Wait().Unwrap()

	if got := string(p.Stdout()); got != "piped" {
		t.Errorf("stdout = %q", got)
	}
}

func TestSpawn_DefaultStdinIsDiscarded(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("cat"))
	if _, ok := p.StdinPipe(); ok {
		t.Error("default stdin should not be piped")
	}
	status := p.Wait().Unwrap()
	if !status.Success() || len(p.Stdout()) != 0 {
		t.Errorf("cat on an empty stdin should exit cleanly, got %+v", status)
	}
}

func TestSpawn_DiscardedStreams(t *testing.T) {
	spec := process.NewSpec("sh", "-c", "echo out; echo err >&2").
		WithStreams(process.StreamDiscard, process.StreamDiscard, process.StreamDiscard)
	p := spawn(t, newSpawner(), spec)
	p.Wait().Unwrap()

	if p.Stdout() != nil || p.Stderr() != nil {
		t.Error("discarded streams should not be captured")
	}
}

func TestSpawn_EnvAndDir(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	spec := process.NewSpec("sh", "-c", `printf '%s %s' "$BUGYI_TEST" "$(pwd -P)"`).
		WithEnv("BUGYI_TEST", "hello123").
		WithDir(dir)
	p := spawn(t, newSpawner(), spec)
	p.Wait().Unwrap()

	got := string(p.Stdout())
	if !strings.HasPrefix(got, "hello123 ") {
		t.Errorf("env not applied: %q", got)
	}
	if !strings.HasSuffix(got, dir) {
		t.Errorf("dir not applied: %q (want suffix %q)", got, dir)
	}
}

func TestSpawn_SpecNotMutated(t *testing.T) {
	spec := process.NewSpec("true").WithEnv("A", "1")
	s := process.NewSpawner(
		process.WithLogger(logger.Nop()),
		process.WithDefaults(process.Defaults{Env: map[string]string{"B": "2"}}),
	)
	p := spawn(t, s, spec)
	p.Wait().Unwrap()

	if len(spec.Env) != 1 {
		t.Errorf("caller spec was mutated: %v", spec.Env)
	}
	if got := p.Spec().Env; got["A"] != "1" || got["B"] != "2" {
		t.Errorf("spawned spec should carry defaults, got %v", got)
	}
}

func TestSpawn_MaxOutputAndConsumer(t *testing.T) {
	var seen bytes.Buffer
	chunks := make(chan process.Chunk, 64)
	spec := process.NewSpec("sh", "-c", "printf 0123456789").
		WithMaxOutput(4).
		WithConsumer(func(c process.Chunk) { chunks <- c })

	p := spawn(t, newSpawner(), spec)
	p.Wait().Unwrap()
	close(chunks)

	for c := range chunks {
		if c.Source != process.SourceStdout {
			t.Errorf("unexpected source %s", c.Source)
		}
		seen.Write(c.Data)
	}
	if seen.String() != "0123456789" {
		t.Errorf("consumer saw %q", seen.String())
	}
	if string(p.Stdout()) != "0123" || !p.Truncated() {
		t.Errorf("expected capped stdout '0123', got %q (truncated=%v)", p.Stdout(), p.Truncated())
	}
}

func TestProcess_DoneWithoutWait(t *testing.T) {
	p := spawn(t, newSpawner(), process.NewSpec("true"))
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child was not reaped without Wait")
	}
	if p.Poll() != process.Exited {
		t.Errorf("expected Exited, got %s", p.Poll())
	}
}

func TestPackageSpawn(t *testing.T) {
	p, err := process.Spawn(context.Background(), process.NewSpec("true")).Get()
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if !p.Wait().Unwrap().Success() {
		t.Error("expected success")
	}
}

func TestState_String(t *testing.T) {
	tests := map[process.State]string{
		process.Running:   "running",
		process.Exited:    "exited",
		process.Killed:    "killed",
		process.State(99): "State(99)",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("got %q, want %q", s.String(), want)
		}
	}
	if process.Running.Terminal() || !process.Exited.Terminal() || !process.Killed.Terminal() {
		t.Error("unexpected Terminal results")
	}
}

func TestKill_ExitedBeforeReap(t *testing.T) {
	s := newSpawner()
	for i := 0; i < 100; i++ {
		p := spawn(t, s, process.NewSpec("true"))
		time.Sleep(10 * time.Millisecond)

		killErr := p.Kill().Err()
		status := p.Wait().Unwrap()
		switch status.State {
		case process.Exited:
			if !process.IsAlreadyTerminated(killErr) {
				t.Fatalf("iteration %d: child exited on its own but Kill returned %v", i, killErr)
			}
		case process.Killed:
			if killErr != nil {
				t.Fatalf("iteration %d: child was killed but Kill returned %v", i, killErr)
			}
		}
	}
}

func TestPoll_DescendantHoldsOutput(t *testing.T) {
	spec := process.NewSpec("sh", "-c", "echo started; sleep 3 & exit 5")
	spec.WaitDelay = 200 * time.Millisecond
	p := spawn(t, newSpawner(), spec)

	deadline := time.Now().Add(time.Second)
	for p.Poll() == process.Running {
		if time.Now().After(deadline) {
			t.Fatal("child still Running after its shell exited")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if p.Poll() != process.Exited {
		t.Fatalf("expected Exited, got %s", p.Poll())
	}
	if r := p.Kill(); !process.IsAlreadyTerminated(r.Err()) {
		t.Errorf("expected ALREADY_TERMINATED, got %v", r.Err())
	}

	start := time.Now()
	status := p.Wait().Unwrap()
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Wait blocked %s on the descendant's pipes", elapsed)
	}
	if status.Code != 5 {
		t.Errorf("expected exit code 5, got %d", status.Code)
	}
	if got := string(p.Stdout()); got != "started\n" {
		t.Errorf("expected output before exit to be kept, got %q", got)
	}
}
