package process_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/observability"
	"github.com/bbugyi200/bugyi/process"
)

func spawnCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "process.spawn.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				counts[status.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestSpawner_Observability(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewProcessMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewProcessMetrics: %v", err)
	}

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	s := process.NewSpawner(
		process.WithLogger(logger.Nop()),
		process.WithMetrics(metrics),
		process.WithTracer(tp.Tracer("test")),
	)

	p := s.Spawn(context.Background(), process.NewSpec("true")).Unwrap()
	p.Wait()
	_ = s.Spawn(context.Background(), process.Spec{})

	counts := spawnCounts(t, reader)
	if counts[observability.SpawnLaunched] != 1 {
		t.Errorf("expected 1 launched, got %d", counts[observability.SpawnLaunched])
	}
	if counts[observability.SpawnInvalid] != 1 {
		t.Errorf("expected 1 invalid, got %d", counts[observability.SpawnInvalid])
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	first := spans[0]
	if first.Name != observability.SpanProcessSpawn {
		t.Errorf("expected span %s, got %s", observability.SpanProcessSpawn, first.Name)
	}
	var pid int64
	for _, kv := range first.Attributes {
		if kv.Key == attribute.Key(observability.AttrPID) {
			pid = kv.Value.AsInt64()
		}
	}
	if pid != int64(p.PID()) {
		t.Errorf("expected pid attribute %d, got %d", p.PID(), pid)
	}
}
