// Package process spawns external commands and tracks each child through a
// Process handle.
//
// Every fallible operation returns a result.Result instead of a bare error:
//
//	p := process.Spawn(ctx, process.NewSpec("git", "status", "-s")).Unwrap()
//	status := p.Wait()
//	if status.IsOk() {
//	    fmt.Print(string(p.Stdout()))
//	}
//
// Standard output and standard error are drained concurrently with the
// child, so a chatty child never blocks on a full pipe even when nobody has
// called Wait yet. The reaper goroutine started by Spawn collects the exit
// status whether or not the handle is kept.
//
// Run is the one-shot form: it spawns, waits and turns a non-zero exit into
// a COMMAND_FAILED error carrying the command's output.
package process
