package process

import "os/exec"

// CommandExists reports whether name resolves to an executable, either as
// a path or through PATH.
func CommandExists(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
