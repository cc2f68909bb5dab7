// Command bugyi-run runs one command with the bugyi process toolkit and
// exits with the command's exit code.
//
//	bugyi-run -v --timeout 30s -- make test
//	bugyi-run --shell 'ls | wc -l'
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/process"
)

// reportWidth is the width of the error report printed on failure.
const reportWidth = 80

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	code := exitCode(err)
	reportError(stderr, err)
	return code
}

// reportError tells the user why bugyi-run failed. A command that exited with
// a code already spoke for itself; a killed one gets its status printed.
func reportError(w io.Writer, err error) {
	var ue usageError
	switch {
	case errors.As(err, &ue):
		fmt.Fprintln(w, "bugyi-run:", err)
	case process.IsCommandFailed(err):
		if status := killedStatus(err); status != "" {
			fmt.Fprintln(w, "bugyi-run:", status)
		}
	default:
		fmt.Fprintln(w, apperrors.Report(err, reportWidth))
	}
}

// killedStatus returns the status text of a command that died by signal.
func killedStatus(err error) string {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || signalNumber(appErr) == 0 {
		return ""
	}
	status, _ := appErr.Details["status"].(string)
	return status
}
