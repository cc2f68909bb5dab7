//go:build unix

package process

import (
	"errors"
	"os"
	"syscall"

	apperrors "github.com/bbugyi200/bugyi/errors"
)

var terminateSignal os.Signal = syscall.SIGTERM

func exitState(ps *os.ProcessState, _ bool) (State, os.Signal) {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Killed, ws.Signal()
	}
	return Exited, nil
}

func signalError(pid int, op string, err error) *apperrors.AppError {
	switch {
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
		return apperrors.AlreadyTerminated(pid).WithCause(err)
	case errors.Is(err, syscall.EPERM), errors.Is(err, os.ErrPermission):
		return apperrors.PermissionDenied(pid, err)
	default:
		return apperrors.Unsupported(op, err)
	}
}

// processAlive reports whether pid names a live process, including one
// owned by another user.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
