//go:build !unix

package process

import (
	"errors"
	"os"

	apperrors "github.com/bbugyi200/bugyi/errors"
)

// Only os.Kill is deliverable everywhere; Terminate falls back to it when
// this signal is refused.
var terminateSignal os.Signal = os.Interrupt

// exitState cannot tell a signal from an exit code here, so a child is
// Killed only when Kill was requested and it did not exit cleanly.
func exitState(ps *os.ProcessState, killRequested bool) (State, os.Signal) {
	if killRequested && !ps.Success() {
		return Killed, os.Kill
	}
	return Exited, nil
}

func signalError(pid int, op string, err error) *apperrors.AppError {
	switch {
	case errors.Is(err, os.ErrProcessDone):
		return apperrors.AlreadyTerminated(pid).WithCause(err)
	case errors.Is(err, os.ErrPermission):
		return apperrors.PermissionDenied(pid, err)
	default:
		return apperrors.Unsupported(op, err)
	}
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
