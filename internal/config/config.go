// Package config provides configuration loading for crxproject.
//
// Configuration is layered: hardcoded defaults, then an optional YAML file,
// then CRXPROJECT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete crxproject configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Workspace WorkspaceConfig `koanf:"workspace"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	OTEL   bool   `koanf:"otel"`
}

// WorkspaceConfig holds project discovery settings.
type WorkspaceConfig struct {
	// IgnoreFiles are gitignore-style files read from the scan root.
	IgnoreFiles []string `koanf:"ignore_files"`

	// FallbackPatterns apply when no ignore file is found.
	FallbackPatterns []string `koanf:"fallback_patterns"`

	// MaxDepth bounds how deep a scan descends below its root.
	MaxDepth int `koanf:"max_depth"`

	// CacheSize is the number of loaded projects kept in memory.
	CacheSize int `koanf:"cache_size"`

	// Debounce coalesces bursts of watcher events.
	Debounce Duration `koanf:"debounce"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`
	// Protocol is "grpc" or "http/protobuf".
	Protocol       string   `koanf:"protocol"`
	Insecure       bool     `koanf:"insecure"`
	ServiceName    string   `koanf:"service_name"`
	SampleRate     float64  `koanf:"sample_rate"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if len(cfg.Workspace.IgnoreFiles) == 0 {
		cfg.Workspace.IgnoreFiles = []string{".gitignore", ".crxignore"}
	}
	if len(cfg.Workspace.FallbackPatterns) == 0 {
		cfg.Workspace.FallbackPatterns = []string{"**/node_modules/**", "**/.git/**"}
	}
	if cfg.Workspace.MaxDepth == 0 {
		cfg.Workspace.MaxDepth = 4
	}
	if cfg.Workspace.CacheSize == 0 {
		cfg.Workspace.CacheSize = 128
	}
	if cfg.Workspace.Debounce == 0 {
		cfg.Workspace.Debounce = Duration(100 * time.Millisecond)
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = Duration(15 * time.Second)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "crxproject"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q (must be json or console)", c.Logging.Format)
	}

	if c.Workspace.MaxDepth < 0 {
		return fmt.Errorf("invalid workspace max_depth: %d (must be >= 0)", c.Workspace.MaxDepth)
	}
	if c.Workspace.CacheSize < 1 {
		return fmt.Errorf("invalid workspace cache_size: %d (must be >= 1)", c.Workspace.CacheSize)
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("invalid telemetry sample_rate: %f (must be 0-1)", c.Telemetry.SampleRate)
	}
	switch c.Telemetry.Protocol {
	case "grpc", "http/protobuf":
	default:
		return fmt.Errorf("invalid telemetry protocol %q (must be grpc or http/protobuf)", c.Telemetry.Protocol)
	}
	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("endpoint required when telemetry is enabled")
	}

	return nil
}
