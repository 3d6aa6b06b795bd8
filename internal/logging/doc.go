// Package logging provides structured logging with OpenTelemetry integration.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Optional dual output (stderr + OpenTelemetry)
//   - Automatic context field injection (trace_id, project, operation)
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithProject(ctx, "/src/my-extension")
//	ctx = logging.WithOperation(ctx, opID, "delete")
//	logger.Info(ctx, "operation classified", zap.Int("data_files", 3))
//
// Output includes automatic correlation:
//
//	{"ts":"...","level":"info","msg":"operation classified",
//	 "project.path":"/src/my-extension","operation.id":"...",
//	 "operation.command":"delete","data_files":3}
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Error(ctx, "view unavailable")
//	tl.AssertLogged(t, zapcore.ErrorLevel, "view unavailable")
package logging
