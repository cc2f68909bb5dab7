package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bbugyi200/bugyi/config"
	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/process"
)

const appName = "bugyi"

// Exit codes for failures that have no child exit code.
const (
	exitFailure = 1
	exitUsage   = 2
	exitTimeout = 124

	exitSignalBase = 128
)

type options struct {
	configFile string
	debug      bool
	verbose    int
	timeout    time.Duration
	pidfile    string
	shell      bool
	dir        string
	env        []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "bugyi-run [flags] [--] command [args...]",
		Short: "Run a command and exit with its exit code",
		Long: `Run a command with the process defaults of the bugyi config file, stream
its output, and exit with its exit code. A command that runs past --timeout is
terminated and bugyi-run exits with 124.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: search bugyi.yml and the user config dir)")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "terminate the command after this long (0 disables)")
	flags.StringVar(&opts.pidfile, "pidfile", "", "refuse to run while the pid in this file is alive")
	flags.BoolVar(&opts.shell, "shell", false, "run the arguments as one script with the configured shell")
	flags.StringVarP(&opts.dir, "dir", "C", "", "working directory of the command")
	flags.StringArrayVarP(&opts.env, "env", "e", nil, "set NAME=VALUE in the command's environment (repeatable)")
	flags.SetInterspersed(false)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	return cmd
}

func run(ctx context.Context, opts *options, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(appName, config.WithConfigFile(opts.configFile))
	if err != nil {
		return usageError{err}
	}
	cfg.Debug = cfg.Debug || opts.debug
	cfg.Verbose += opts.verbose

	rt, err := config.Setup(ctx, cfg)
	if err != nil {
		return usageError{err}
	}
	defer func() {
		if err := rt.Shutdown(context.WithoutCancel(ctx)); err != nil {
			rt.Logger.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	if opts.pidfile != "" {
		if err := process.CreatePidfile(opts.pidfile).Err(); err != nil {
			return err
		}
		defer os.Remove(opts.pidfile)
	}

	spec, err := buildSpec(cfg, opts, args)
	if err != nil {
		return usageError{err}
	}
	spec = spec.WithConsumer(func(c process.Chunk) {
		if c.Source == process.SourceStdout {
			_, _ = stdout.Write(c.Data)
			return
		}
		_, _ = stderr.Write(c.Data)
	})

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	c, err := rt.Runner.Run(ctx, spec).Get()
	if err != nil {
		return err
	}
	rt.Logger.Debug("command finished", logger.Fields(
		logger.FieldRunID, c.RunID,
		logger.FieldPID, c.PID,
		logger.FieldDuration, c.Duration.Milliseconds(),
	))
	return nil
}

func buildSpec(cfg *config.Config, opts *options, args []string) (process.Spec, error) {
	var spec process.Spec
	if opts.shell {
		spec = cfg.Process.Script(strings.Join(args, " "))
	} else {
		spec = cfg.Process.Command(args[0], args[1:]...)
	}
	if opts.dir != "" {
		spec = spec.WithDir(opts.dir)
	}
	for _, kv := range opts.env {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return spec, fmt.Errorf("--env %q: want NAME=VALUE", kv)
		}
		spec = spec.WithEnv(name, value)
	}
	return spec, nil
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCode maps a run error to the process exit code. A failed command
// passes its own exit code through; one killed by a signal exits with 128
// plus the signal number, as shells do.
func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		return exitUsage
	case process.IsTimeout(err):
		return exitTimeout
	case process.IsCommandFailed(err):
		if appErr, ok := apperrors.AsAppError(err); ok {
			if sig := signalNumber(appErr); sig > 0 {
				return exitSignalBase + sig
			}
			if code, ok := appErr.Details["exit_code"].(int); ok && code > 0 {
				return code
			}
		}
	}
	return exitFailure
}

func signalNumber(appErr *apperrors.AppError) int {
	sig, _ := appErr.Details["signal"].(int)
	return sig
}
