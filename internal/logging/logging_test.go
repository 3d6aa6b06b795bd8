package logging

import (
	"context"
	"testing"
	"time"

	"github.com/fyrsmithlabs/crxproject/internal/config"
	"github.com/fyrsmithlabs/crxproject/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{" WARN ", zapcore.WarnLevel, false},
		{"Trace", TraceLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := LevelFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"json format", func(c *Config) { c.Format = "json" }, false},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
		{"no outputs", func(c *Config) { c.Output.Stderr = false }, true},
		{"zero tick", func(c *Config) { c.Sampling.Tick = 0 }, true},
		{"zero tick without sampling", func(c *Config) {
			c.Sampling.Enabled = false
			c.Sampling.Tick = 0
		}, false},
		{"empty field value", func(c *Config) { c.Fields["env"] = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	_, err = FromAppConfig(config.LoggingConfig{Level: "shouty", Format: "json"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sampling.Tick = config.Duration(time.Second)

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(zapcore.ErrorLevel))
	assert.False(t, logger.Enabled(zapcore.DebugLevel))

	cfg.Output.Stderr = false
	cfg.Output.OTEL = true
	_, err = NewLogger(cfg, nil)
	assert.Error(t, err, "otel output without a provider leaves no cores")
}

func TestNewLogger_OTELOutput(t *testing.T) {
	tel := telemetry.NewTestTelemetry()

	cfg := NewDefaultConfig()
	cfg.Output.Stderr = false
	cfg.Output.OTEL = true
	logger, err := NewLogger(cfg, tel.LoggerProvider())
	require.NoError(t, err)

	logger.Warn(context.Background(), "leaving project root in place", zap.String("path", "/work/proj"))
	require.NoError(t, tel.ForceFlush(context.Background()))

	assert.Contains(t, tel.LogBodies(), "leaving project root in place")
}

func TestContextFields(t *testing.T) {
	ctx := WithProject(context.Background(), "/src/ext")
	ctx = WithOperation(ctx, "op-1", "delete")

	tl := NewTestLogger()
	tl.Info(ctx, "classified", zap.Int("data_files", 3))

	tl.AssertLogged(t, zapcore.InfoLevel, "classified")
	tl.AssertField(t, "classified", "project.path", "/src/ext")
	tl.AssertField(t, "classified", "operation.id", "op-1")
	tl.AssertField(t, "classified", "operation.command", "delete")
	tl.AssertField(t, "classified", "data_files", int64(3))
}

func TestContextFields_Trace(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	fields := ContextFields(ctx)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"trace_id", "span_id"}, keys)
	assert.Empty(t, ContextFields(context.Background()))
}

func TestFromContext(t *testing.T) {
	nop := FromContext(context.Background())
	require.NotNil(t, nop)
	assert.False(t, nop.Enabled(zapcore.ErrorLevel))

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	assert.Same(t, tl.Logger, FromContext(ctx))
}

func TestTestLogger_Reset(t *testing.T) {
	tl := NewTestLogger()
	tl.Named("view").Warn(context.Background(), "node missing")
	tl.AssertLogged(t, zapcore.WarnLevel, "node missing")

	tl.Reset()
	assert.Empty(t, tl.All())
	tl.AssertNotLogged(t, zapcore.WarnLevel, "node missing")
}
