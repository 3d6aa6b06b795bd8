package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 6)

	// Trace correlation (from OpenTelemetry)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if path := ProjectFromContext(ctx); path != "" {
		fields = append(fields, zap.String("project.path", path))
	}

	if op, ok := OperationFromContext(ctx); ok {
		fields = append(fields,
			zap.String("operation.id", op.ID),
			zap.String("operation.command", op.Command),
		)
	}

	return fields
}

// Context key types
type projectCtxKey struct{}
type operationCtxKey struct{}
type loggerCtxKey struct{}

// Operation identifies a structural operation for log correlation.
type Operation struct {
	ID      string
	Command string
}

// WithProject adds the project root path to context.
func WithProject(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, projectCtxKey{}, path)
}

// ProjectFromContext extracts the project root path from context.
func ProjectFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(projectCtxKey{}).(string); ok {
		return p
	}
	return ""
}

// WithOperation adds an operation id and command to context.
func WithOperation(ctx context.Context, id, command string) context.Context {
	return context.WithValue(ctx, operationCtxKey{}, Operation{ID: id, Command: command})
}

// OperationFromContext extracts the operation from context.
func OperationFromContext(ctx context.Context) (Operation, bool) {
	op, ok := ctx.Value(operationCtxKey{}).(Operation)
	return op, ok
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return NewNop()
}
