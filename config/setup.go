package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/observability"
	"github.com/bbugyi200/bugyi/process"
)

// Runtime holds what Setup built from a Config.
type Runtime struct {
	Config  *Config
	Logger  *logger.Logger
	Spawner *process.Spawner
	Runner  *process.Runner

	shutdown []func(context.Context) error
}

// Setup initializes the global logger, the configured OpenTelemetry
// providers and a Spawner that applies cfg.Process to every command.
// Call Shutdown on exit to flush telemetry.
func Setup(ctx context.Context, cfg *Config) (*Runtime, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if err := logger.Init(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}

	rt := &Runtime{Config: cfg, Logger: logger.GetGlobalLogger()}

	if cfg.Tracing != nil {
		tp, err := observability.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			return nil, err
		}
		rt.shutdown = append(rt.shutdown, tp.Shutdown)
	}

	metrics := observability.NopProcessMetrics()
	if cfg.Metrics != nil {
		mp, err := observability.InitMeter(ctx, cfg.Metrics)
		if err != nil {
			_ = rt.Shutdown(ctx)
			return nil, err
		}
		rt.shutdown = append(rt.shutdown, mp.Shutdown)

		if metrics, err = observability.NewProcessMetrics(mp.Meter(observability.TracerName)); err != nil {
			_ = rt.Shutdown(ctx)
			return nil, fmt.Errorf("process metrics: %w", err)
		}
	}

	rt.Spawner = process.NewSpawner(
		process.WithLogger(rt.Logger.WithComponent("process")),
		process.WithMetrics(metrics),
		process.WithDefaults(cfg.Process),
	)
	rt.Runner = process.NewRunner(cfg.Resilience, rt.Spawner)

	rt.Logger.Debug("runtime ready", logger.Fields(
		"name", cfg.Name,
		"level", cfg.Logging.Level,
		"tracing", cfg.Tracing != nil,
		"metrics", cfg.Metrics != nil,
	))
	return rt, nil
}

// Shutdown flushes and stops the telemetry providers in reverse order.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(rt.shutdown) - 1; i >= 0; i-- {
		if err := rt.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.shutdown = nil
	return errors.Join(errs...)
}
