package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/bbugyi200/bugyi/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Spawn outcomes recorded by RecordSpawn.
const (
	SpawnLaunched = "launched"
	SpawnInvalid  = "invalid"
	SpawnFailed   = "failed"
)

// ProcessMetrics holds the instruments recorded around child processes.
type ProcessMetrics struct {
	spawnTotal metric.Int64Counter
	active     metric.Int64UpDownCounter
	duration   metric.Float64Histogram
	exitTotal  metric.Int64Counter
}

// NewProcessMetrics creates process instruments on the given meter.
func NewProcessMetrics(meter metric.Meter) (*ProcessMetrics, error) {
	spawnTotal, err := meter.Int64Counter("process.spawn.total",
		metric.WithDescription("Spawn attempts by binary and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.spawn.total counter: %w", err)
	}

	active, err := meter.Int64UpDownCounter("process.active",
		metric.WithDescription("Number of child processes not yet reaped"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.active gauge: %w", err)
	}

	duration, err := meter.Float64Histogram("process.duration",
		metric.WithDescription("Wall time from spawn to reap in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.duration histogram: %w", err)
	}

	exitTotal, err := meter.Int64Counter("process.exit.total",
		metric.WithDescription("Reaped processes by binary and final state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.exit.total counter: %w", err)
	}

	return &ProcessMetrics{
		spawnTotal: spawnTotal,
		active:     active,
		duration:   duration,
		exitTotal:  exitTotal,
	}, nil
}

// NopProcessMetrics returns instruments that record nothing.
func NopProcessMetrics() *ProcessMetrics {
	m, _ := NewProcessMetrics(noop.NewMeterProvider().Meter("noop"))
	return m
}

// RecordSpawn counts a spawn attempt. A launched spawn also marks the
// process active until RecordExit.
func (m *ProcessMetrics) RecordSpawn(ctx context.Context, binary, status string) {
	m.spawnTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("binary", binary),
		attribute.String("status", status),
	))
	if status == SpawnLaunched {
		m.active.Add(ctx, 1)
	}
}

// RecordExit records a reaped process.
func (m *ProcessMetrics) RecordExit(ctx context.Context, binary, state string, duration time.Duration) {
	m.active.Add(ctx, -1)
	m.exitTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("binary", binary),
		attribute.String("state", state),
	))
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("binary", binary),
	))
}
