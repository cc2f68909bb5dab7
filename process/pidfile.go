package process

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/result"
)

// CreatePidfile records the current PID at path. It fails with STILL_ALIVE
// when path already names another live process. A stale or unreadable
// pidfile is overwritten. The returned value is the PID written.
func CreatePidfile(path string) result.Result[int] {
	self := os.Getpid()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if pid, perr := strconv.Atoi(strings.TrimSpace(string(data))); perr == nil && pid != self && processAlive(pid) {
			return result.Err[int](apperrors.StillAlive(pid).WithDetail("path", path))
		}
		logger.Debug("replacing stale pidfile", logger.Fields("path", path))
	case !errors.Is(err, fs.ErrNotExist):
		return result.Err[int](apperrors.Internal(err).WithDetail("path", path))
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(self)+"\n"), 0o644); err != nil { //nolint:gosec // pidfiles are meant to be world-readable
		return result.Err[int](apperrors.Internal(err).WithDetail("path", path))
	}
	return result.Ok(self)
}
