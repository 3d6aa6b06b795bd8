// Package telemetry provides OpenTelemetry instrumentation for crxproject.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	tracer := tel.Tracer("crxproject/lifecycle")
//	ctx, span := tracer.Start(ctx, "crxproject.operation.delete")
//	defer span.End()
//
// When telemetry is disabled, Tracer and Meter fall back to the global
// (no-op) providers so instrumented code never has to check, and
// LoggerProvider is nil. When enabled, LoggerProvider feeds the otelzap
// core that logging.NewLogger adds for logging.otel.
//
// Exporters speak OTLP over gRPC or HTTP/protobuf. A failing exporter marks
// the instance degraded; it never fails the caller.
//
// # Testing
//
// NewTestTelemetry records spans and log records in memory and exposes a
// manual metric reader:
//
//	tel := telemetry.NewTestTelemetry()
//	// ... run instrumented code with tel.Tracer / tel.Meter
//	tel.AssertSpanExists(t, "crxproject.operation.delete")
package telemetry
