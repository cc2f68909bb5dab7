package process_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bbugyi200/bugyi/process"
	"github.com/bbugyi200/bugyi/provider"
)

func TestAdapter_Execute(t *testing.T) {
	a := process.NewAdapter(process.Config{Name: "shell"}, newSpawner())
	if a.Name() != "shell" || !a.IsAvailable(context.Background()) {
		t.Fatal("unexpected adapter identity")
	}

	c, err := a.Execute(context.Background(), process.NewSpec("echo", "ok"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Out() != "ok" {
		t.Errorf("expected 'ok', got %q", c.Out())
	}
}

func TestAdapter_Timeout(t *testing.T) {
	a := process.NewAdapter(process.Config{
		Name:        "slow",
		Timeout:     50 * time.Millisecond,
		GracePeriod: 100 * time.Millisecond,
	}, newSpawner())

	_, err := a.Execute(context.Background(), process.NewSpec("sleep", "10"))
	if !process.IsTimeout(err) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}

func TestScriptProvider(t *testing.T) {
	defaults := process.Defaults{Env: map[string]string{"GREETING": "hi"}}
	defaults.ApplyDefaults()

	p := process.NewScriptProvider("script", defaults, process.NewAdapter(process.Config{Name: "sh"}, newSpawner()))
	p = provider.Chain(provider.WithTracing[string, string]("test"))(p)

	out, err := p.Execute(context.Background(), `echo "$GREETING there"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hi there" {
		t.Errorf("expected 'hi there', got %q", out)
	}

	_, err = p.Execute(context.Background(), "exit 4")
	if !process.IsCommandFailed(err) || !strings.Contains(err.Error(), "ec=4") {
		t.Errorf("expected COMMAND_FAILED with ec=4, got %v", err)
	}
}
