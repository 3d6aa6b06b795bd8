package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/config"
	"github.com/fyrsmithlabs/crxproject/internal/hooks"
	"github.com/fyrsmithlabs/crxproject/internal/host"
	"github.com/fyrsmithlabs/crxproject/internal/lifecycle"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/project"
	"github.com/fyrsmithlabs/crxproject/internal/telemetry"
	"github.com/fyrsmithlabs/crxproject/internal/workspace"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg       *config.Config
	fs        afero.Fs
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	factory   *project.Factory
	manager   *workspace.Manager
	scanner   *workspace.Scanner
}

// current is set by setup before any RunE executes.
var current *app

// setup loads configuration and wires the dependency graph:
//  1. config file and environment, then --log-level
//  2. telemetry, then the logger on top of it
//  3. lifecycle runner, reference host and project factory
//  4. workspace cache and scanner
func setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	logCfg, err := logging.FromAppConfig(cfg.Logging)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	if health := tel.Health(); health.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.Strings("reasons", health.Reasons))
	}

	runner, err := lifecycle.NewRunner(
		lifecycle.WithTracer(tel.Tracer(lifecycle.InstrumentationName)),
		lifecycle.WithMeter(tel.Meter(lifecycle.InstrumentationName)),
		lifecycle.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	hookManager := hooks.NewManager()
	registerLogHooks(hookManager, logger)

	fs := newFs()
	factory := project.NewFactory(host.New(runner, logger),
		project.WithHooks(hookManager),
		project.WithLogger(logger),
	)
	manager, err := workspace.NewManager(fs, factory, cfg.Workspace.CacheSize, logger)
	if err != nil {
		return err
	}

	current = &app{
		cfg:       cfg,
		fs:        fs,
		logger:    logger,
		telemetry: tel,
		factory:   factory,
		manager:   manager,
		scanner:   workspace.NewScanner(fs, factory, cfg.Workspace, logger),
	}
	return nil
}

// teardown flushes telemetry and the logger.
func teardown(cmd *cobra.Command, _ []string) error {
	if current == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := current.telemetry.Shutdown(ctx); err != nil {
		current.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
	}
	_ = current.logger.Sync()
	current = nil
	return nil
}

// registerLogHooks logs every lifecycle notification at debug level.
func registerLogHooks(m *hooks.Manager, logger *logging.Logger) {
	for _, hookType := range []hooks.HookType{
		hooks.HookRenaming, hooks.HookRenamed,
		hooks.HookMoving, hooks.HookMoved,
		hooks.HookCopying, hooks.HookCopied,
		hooks.HookDeleting, hooks.HookDeleted,
	} {
		m.Register(hookType, func(ctx context.Context, ev hooks.Event) error {
			logger.Debug(ctx, "lifecycle notification",
				zap.String("hook", string(ev.Type)),
				zap.String("path", ev.ProjectPath),
				zap.String("operation_id", ev.OperationID),
			)
			return nil
		})
	}
}

// absPath resolves a command-line path against the working directory.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

// openProject loads the project at path or explains why it is not one.
func (a *app) openProject(path string) (*project.Project, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}
	return a.manager.Open(abs)
}
