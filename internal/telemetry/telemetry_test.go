package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/fyrsmithlabs/crxproject/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	assert.False(t, tel.IsEnabled())
	assert.True(t, tel.Health().Healthy)
	assert.NotNil(t, tel.Tracer("test"))
	assert.NotNil(t, tel.Meter("test"))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_EnabledBuildsLoggerProvider(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true

	tel, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, tel.LoggerProvider())
	assert.False(t, tel.Health().Degraded)

	// Nothing listens on the endpoint; only the teardown path matters here.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = tel.Shutdown(ctx)
}

func TestNew_DisabledHasNoLoggerProvider(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, tel.LoggerProvider())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.SampleRate = 2

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"disabled skips checks", func(c *Config) { c.Endpoint = "" }, false},
		{"enabled defaults", func(c *Config) { c.Enabled = true }, false},
		{"missing endpoint", func(c *Config) { c.Enabled = true; c.Endpoint = "" }, true},
		{"missing service", func(c *Config) { c.Enabled = true; c.ServiceName = "" }, true},
		{"bad protocol", func(c *Config) { c.Enabled = true; c.Protocol = "udp" }, true},
		{"insecure remote", func(c *Config) { c.Enabled = true; c.Endpoint = "otel.example.com:4317" }, true},
		{"secure remote", func(c *Config) {
			c.Enabled = true
			c.Endpoint = "otel.example.com:4317"
			c.Insecure = false
		}, false},
		{"insecure ipv6 loopback", func(c *Config) { c.Enabled = true; c.Endpoint = "[::1]:4317" }, false},
		{"insecure http scheme local", func(c *Config) {
			c.Enabled = true
			c.Protocol = "http/protobuf"
			c.Endpoint = "http://127.0.0.1:4318"
		}, false},
		{"zero export interval", func(c *Config) { c.Enabled = true; c.ExportInterval = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)
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
	app := config.Default().Telemetry
	app.Enabled = true
	app.SampleRate = 0.25
	app.Protocol = "http/protobuf"

	cfg := FromAppConfig(app)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 0.25, cfg.SampleRate)
	assert.Equal(t, "http/protobuf", cfg.Protocol)
	assert.Equal(t, "crxproject", cfg.ServiceName)
	assert.NoError(t, cfg.Validate())
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.5).Description(), "TraceIDRatioBased")
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "host:4318", stripScheme("https://host:4318"))
	assert.Equal(t, "host:4318", stripScheme("http://host:4318"))
	assert.Equal(t, "host:4318", stripScheme("host:4318"))
}

func TestTestTelemetry(t *testing.T) {
	tel := NewTestTelemetry()
	ctx := context.Background()

	_, span := tel.Tracer("test").Start(ctx, "unit")
	span.SetAttributes(attribute.String("command", "delete"))
	span.End()

	tel.AssertSpanExists(t, "unit")
	tel.AssertSpanAttribute(t, "unit", "command", "delete")

	counter, err := tel.Meter("test").Int64Counter("ops")
	require.NoError(t, err)
	counter.Add(ctx, 2, metricOpt("command", "move"))
	counter.Add(ctx, 1, metricOpt("command", "copy"))

	assert.Equal(t, int64(3), tel.CounterValue(t, "ops", "", ""))
	assert.Equal(t, int64(2), tel.CounterValue(t, "ops", "command", "move"))
	assert.Equal(t, int64(0), tel.CounterValue(t, "missing", "", ""))
}

func metricOpt(k, v string) metric.AddOption {
	return metric.WithAttributes(attribute.String(k, v))
}

func TestTestTelemetry_Logs(t *testing.T) {
	tel := NewTestTelemetry()

	var rec log.Record
	rec.SetBody(log.StringValue("project deleted"))
	tel.LoggerProvider().Logger("test").Emit(context.Background(), rec)

	assert.Equal(t, []string{"project deleted"}, tel.LogBodies())
}
