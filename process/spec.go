package process

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/validation"
)

// StreamMode selects what a child's standard stream is connected to.
type StreamMode int

const (
	// StreamDefault captures stdout and stderr. Stdin reads Spec.Input when
	// set and is discarded otherwise.
	StreamDefault StreamMode = iota
	// StreamPipe connects the stream to the parent through a pipe.
	StreamPipe
	// StreamInherit shares the parent's own stream.
	StreamInherit
	// StreamDiscard connects the stream to the null device.
	StreamDiscard
)

// String returns the mode name.
func (m StreamMode) String() string {
	switch m {
	case StreamDefault:
		return "default"
	case StreamPipe:
		return "pipe"
	case StreamInherit:
		return "inherit"
	case StreamDiscard:
		return "discard"
	default:
		return fmt.Sprintf("StreamMode(%d)", int(m))
	}
}

// Spec describes a command to run. Spawn works on a copy, so a Spec can be
// reused after it has been passed in.
type Spec struct {
	// Binary is the executable path, or a name resolved through PATH.
	Binary string `mapstructure:"binary" validate:"required"`
	// Args are the arguments after the program name.
	Args []string `mapstructure:"args"`
	// Dir is the working directory. Empty means the parent's.
	Dir string `mapstructure:"dir" validate:"omitempty,dir"`
	// Env overrides entries of the parent environment. Unlisted names are
	// inherited.
	Env map[string]string `mapstructure:"env" validate:"dive,keys,envkey,endkeys"`

	Stdin  StreamMode `mapstructure:"stdin" validate:"gte=0,lte=3"`
	Stdout StreamMode `mapstructure:"stdout" validate:"gte=0,lte=3"`
	Stderr StreamMode `mapstructure:"stderr" validate:"gte=0,lte=3"`

	// Input feeds the child's stdin.
	Input io.Reader `mapstructure:"-"`
	// OnOutput receives every chunk written to a captured stream.
	OnOutput Consumer `mapstructure:"-"`
	// MaxOutput caps the bytes kept per captured stream. Zero keeps all.
	MaxOutput int `mapstructure:"max_output" validate:"gte=0"`
	// GracePeriod is how long Terminate waits after SIGTERM before SIGKILL.
	GracePeriod time.Duration `mapstructure:"grace_period" validate:"gte=0"`
	// WaitDelay bounds how long the reaper waits for the output pipes to
	// close once the child has exited. Zero means DefaultWaitDelay.
	WaitDelay time.Duration `mapstructure:"wait_delay" validate:"gte=0"`
}

const (
	// DefaultGracePeriod is used when Spec.GracePeriod is zero.
	DefaultGracePeriod = 5 * time.Second
	// DefaultWaitDelay is used when Spec.WaitDelay is zero.
	DefaultWaitDelay = 2 * time.Second
)

// NewSpec returns a Spec running binary with args and default streams.
func NewSpec(binary string, args ...string) Spec {
	return Spec{Binary: binary, Args: slices.Clone(args)}
}

// WithArgs returns a copy of s with args appended.
func (s Spec) WithArgs(args ...string) Spec {
	s.Args = append(slices.Clone(s.Args), args...)
	return s
}

// WithDir returns a copy of s that runs in dir.
func (s Spec) WithDir(dir string) Spec {
	s.Dir = dir
	return s
}

// WithEnv returns a copy of s with name set to value in the child's
// environment.
func (s Spec) WithEnv(name, value string) Spec {
	env := maps.Clone(s.Env)
	if env == nil {
		env = make(map[string]string, 1)
	}
	env[name] = value
	s.Env = env
	return s
}

// WithInput returns a copy of s whose stdin reads r.
func (s Spec) WithInput(r io.Reader) Spec {
	s.Input = r
	return s
}

// WithStreams returns a copy of s with the given stream modes.
func (s Spec) WithStreams(stdin, stdout, stderr StreamMode) Spec {
	s.Stdin, s.Stdout, s.Stderr = stdin, stdout, stderr
	return s
}

// WithConsumer returns a copy of s that forwards output chunks to fn.
func (s Spec) WithConsumer(fn Consumer) Spec {
	s.OnOutput = fn
	return s
}

// WithMaxOutput returns a copy of s that keeps at most n bytes per stream.
func (s Spec) WithMaxOutput(n int) Spec {
	s.MaxOutput = n
	return s
}

// WithGracePeriod returns a copy of s with the given SIGTERM grace period.
func (s Spec) WithGracePeriod(d time.Duration) Spec {
	s.GracePeriod = d
	return s
}

// Argv returns the program name followed by its arguments.
func (s Spec) Argv() []string {
	return append([]string{s.Binary}, s.Args...)
}

// String renders the command line for logs.
func (s Spec) String() string {
	return strings.Join(s.Argv(), " ")
}

// Validate reports an INVALID_SPEC error when s cannot be spawned.
func (s Spec) Validate() error {
	v := validation.New()
	v.Merge("spec", validation.Validate(s))
	v.Custom(s.Input == nil || s.Stdin == StreamDefault || s.Stdin == StreamPipe,
		"input", "requires a piped stdin")

	if err := v.Validate(); err != nil {
		return apperrors.InvalidSpec(err.Message).WithCause(err)
	}
	return nil
}

// clone copies the slices and maps of s so later edits by the caller do not
// reach a running child.
func (s Spec) clone() Spec {
	s.Args = slices.Clone(s.Args)
	s.Env = maps.Clone(s.Env)
	return s
}

// environ returns the child's environment: nil to inherit the parent's
// unchanged, otherwise the parent's with s.Env applied in key order.
func (s Spec) environ() []string {
	if len(s.Env) == 0 {
		return nil
	}
	env := os.Environ()
	for _, name := range slices.Sorted(maps.Keys(s.Env)) {
		prefix := name + "="
		env = slices.DeleteFunc(env, func(kv string) bool {
			return strings.HasPrefix(kv, prefix)
		})
		env = append(env, prefix+s.Env[name])
	}
	return env
}

func (s Spec) gracePeriod() time.Duration {
	if s.GracePeriod > 0 {
		return s.GracePeriod
	}
	return DefaultGracePeriod
}

func (s Spec) waitDelay() time.Duration {
	if s.WaitDelay > 0 {
		return s.WaitDelay
	}
	return DefaultWaitDelay
}
