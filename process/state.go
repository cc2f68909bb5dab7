package process

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// State is the lifecycle state of a spawned child. A failed launch never
// produces a Process, so there is no state for it.
type State int32

const (
	// Running means the child has not been reaped yet.
	Running State = iota
	// Exited means the child terminated normally with an exit code.
	Exited
	// Killed means the child was terminated by a signal.
	Killed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Exited:
		return "exited"
	case Killed:
		return "killed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether s is Exited or Killed.
func (s State) Terminal() bool { return s == Exited || s == Killed }

// ExitStatus is how a child terminated.
type ExitStatus struct {
	// Code is the exit code, or -1 when the child was killed by a signal.
	Code int
	// State is Exited or Killed.
	State State
	// Signal is the terminating signal for a Killed child, when known.
	Signal os.Signal
	// Duration is the time from spawn to reap.
	Duration time.Duration
}

// Success reports whether the child exited normally with code 0.
func (s ExitStatus) Success() bool {
	return s.State == Exited && s.Code == 0
}

// String renders the status for logs.
func (s ExitStatus) String() string {
	if s.State == Killed && s.Signal != nil {
		return fmt.Sprintf("killed (%s)", s.Signal)
	}
	return fmt.Sprintf("%s (ec=%d)", s.State, s.Code)
}

// SignalNumber returns the number of the terminating signal, or 0 when the
// child was not killed by a known signal.
func (s ExitStatus) SignalNumber() int {
	if sig, ok := s.Signal.(syscall.Signal); ok && s.State == Killed {
		return int(sig)
	}
	return 0
}
