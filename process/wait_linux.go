//go:build linux

package process

import (
	"errors"

	"golang.org/x/sys/unix"
)

// childExited reports whether the child pid has terminated, reaped or not.
// WNOWAIT leaves a zombie in place for the reaper goroutine.
func childExited(pid int) bool {
	var info unix.Siginfo
	err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WNOHANG|unix.WNOWAIT, nil)
	switch {
	case errors.Is(err, unix.ECHILD):
		return true
	case err != nil:
		return false
	}
	return info.Signo == int32(unix.SIGCHLD)
}
