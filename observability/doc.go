// Package observability provides OpenTelemetry tracing and metrics for
// process execution.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanProcessRun)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewProcessMetrics(observability.Meter("bugyi"))
//	metrics.RecordSpawn(ctx, "git", observability.SpawnLaunched)
package observability
