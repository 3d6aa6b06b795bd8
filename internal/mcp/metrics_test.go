package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fyrsmithlabs/crxproject/internal/host"
	"github.com/fyrsmithlabs/crxproject/internal/project"
	"github.com/fyrsmithlabs/crxproject/internal/workspace"
)

func TestMetrics_RecordInvocation(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	m := NewMetrics(mp.Meter(instrumentationName), nil)

	ctx := context.Background()
	m.IncrementActive(ctx, "project_scan")
	m.RecordInvocation(ctx, "project_scan", 100*time.Millisecond, nil)
	m.RecordInvocation(ctx, "project_scan", 50*time.Millisecond, project.ErrInvalidCommand)
	m.DecrementActive(ctx, "project_scan")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, mm := range sm.Metrics {
			if sum, ok := mm.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[mm.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), sums["crxproject.mcp.tool.invocations_total"])
	assert.Equal(t, int64(1), sums["crxproject.mcp.tool.errors_total"])
	assert.Equal(t, int64(0), sums["crxproject.mcp.tool.active_requests"])
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", project.ErrInvalidCommand), "validation_error"},
		{host.ErrMissingParameter, "validation_error"},
		{workspace.ErrOutsideRoot, "validation_error"},
		{workspace.ErrNotProject, "not_found"},
		{host.ErrTargetExists, "conflict"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, categorizeError(tt.err))
	}
}
