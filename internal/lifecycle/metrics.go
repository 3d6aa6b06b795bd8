package lifecycle

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the name used for OTEL instrumentation.
const InstrumentationName = "github.com/fyrsmithlabs/crxproject/internal/lifecycle"

// Metrics records lifecycle counters and histograms.
type Metrics struct {
	operationsTotal  metric.Int64Counter
	operationsFailed metric.Int64Counter
	classifiedFiles  metric.Int64Histogram
}

// NewMetrics creates lifecycle instruments. A nil meter uses the global
// meter provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}

	m := &Metrics{}
	var err error

	m.operationsTotal, err = meter.Int64Counter(
		"crxproject.operations.total",
		metric.WithDescription("Structural operations started"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	m.operationsFailed, err = meter.Int64Counter(
		"crxproject.operations.failed",
		metric.WithDescription("Structural operations that ended in the failed state"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	m.classifiedFiles, err = meter.Int64Histogram(
		"crxproject.classified.files",
		metric.WithDescription("Files classified per operation"),
		metric.WithUnit("{file}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 250, 1000),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func commandAttr(cmd Command) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("command", string(cmd)))
}

func (m *Metrics) recordStarted(ctx context.Context, cmd Command) {
	if m == nil {
		return
	}
	m.operationsTotal.Add(ctx, 1, commandAttr(cmd))
}

func (m *Metrics) recordFailed(ctx context.Context, cmd Command) {
	if m == nil {
		return
	}
	m.operationsFailed.Add(ctx, 1, commandAttr(cmd))
}

func (m *Metrics) recordClassified(ctx context.Context, cmd Command, n int) {
	if m == nil {
		return
	}
	m.classifiedFiles.Record(ctx, int64(n), commandAttr(cmd))
}
