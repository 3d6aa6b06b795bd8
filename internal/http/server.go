// Package http serves the workspace over a JSON HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/host"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/project"
	"github.com/fyrsmithlabs/crxproject/internal/workspace"
)

// Server provides HTTP endpoints over one workspace root.
type Server struct {
	echo     *echo.Echo
	root     string
	manager  *workspace.Manager
	scanner  *workspace.Scanner
	logger   *logging.Logger
	config   *Config
	registry *prometheus.Registry
}

// Config holds HTTP server configuration.
type Config struct {
	Addr string

	// RateLimit is the sustained number of mutating requests per second
	// allowed per client, with RateBurst on top.
	RateLimit float64
	RateBurst int

	// Meter receives request metrics. Nil uses the global provider.
	Meter metric.Meter
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		Addr:      "localhost:9090",
		RateLimit: 1,
		RateBurst: 10,
	}
}

// NewServer creates a server for the projects under root.
func NewServer(root string, manager *workspace.Manager, scanner *workspace.Scanner, logger *logging.Logger, cfg *Config) (*Server, error) {
	if manager == nil || scanner == nil {
		return nil, fmt.Errorf("workspace manager and scanner are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if root == "" {
		return nil, fsys.ErrEmptyPath
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		root:     filepath.Clean(root),
		manager:  manager,
		scanner:  scanner,
		logger:   logger.Named("http"),
		config:   cfg,
		registry: prometheus.NewRegistry(),
	}
	metrics := NewHTTPMetrics(cfg.Meter, s.registry, manager.Len, s.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	e.Use(metrics.MetricsMiddleware())

	s.registerRoutes()
	return s, nil
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		s.logger.Info(c.Request().Context(), "http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		return err
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/projects", s.handleScan)
	v1.GET("/projects/info", s.handleInfo)

	limiter := newClientLimiter(s.config.RateLimit, s.config.RateBurst)
	v1.POST("/projects/invoke", s.handleInvoke, limiter.middleware())
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:         "ok",
		Root:           s.root,
		CachedProjects: s.manager.Len(),
	})
}

func (s *Server) handleScan(c echo.Context) error {
	ctx := c.Request().Context()
	paths, err := s.scanner.Scan(ctx, s.root)
	if err != nil {
		s.logger.Error(ctx, "scan failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "scan failed")
	}
	if paths == nil {
		paths = []string{}
	}
	return c.JSON(http.StatusOK, ScanResponse{Root: s.root, Projects: paths})
}

func (s *Server) handleInfo(c echo.Context) error {
	p, err := s.findProject(c.QueryParam("path"))
	if err != nil {
		return s.toHTTPError(c, err)
	}
	info, err := project.Describe(p)
	if err != nil {
		return s.toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleInvoke(c echo.Context) error {
	ctx := c.Request().Context()

	var req InvokeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(ctx, "invalid invoke request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Command == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "command field is required")
	}

	p, err := s.findProject(req.Path)
	if err != nil {
		return s.toHTTPError(c, err)
	}

	params := project.Params{NewName: req.NewName}
	if req.Destination != "" {
		dest, err := workspace.Resolve(s.root, req.Destination)
		if err != nil {
			return s.toHTTPError(c, err)
		}
		params.Destination = dest
	}

	if err := p.Actions().Invoke(ctx, req.Command, params); err != nil {
		return s.toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// findProject resolves path against the root and loads the project there.
func (s *Server) findProject(path string) (*project.Project, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path", host.ErrMissingParameter)
	}
	abs, err := workspace.Resolve(s.root, path)
	if err != nil {
		return nil, err
	}
	return s.manager.Open(abs)
}

// toHTTPError maps domain errors to status codes.
func (s *Server) toHTTPError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, project.ErrInvalidCommand),
		errors.Is(err, host.ErrMissingParameter),
		errors.Is(err, host.ErrInvalidDestination),
		errors.Is(err, fsys.ErrInvalidName),
		errors.Is(err, workspace.ErrOutsideRoot):
		status = http.StatusBadRequest
	case errors.Is(err, workspace.ErrNotProject),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fsys.ErrNotDir):
		status = http.StatusNotFound
	case errors.Is(err, host.ErrTargetExists):
		status = http.StatusConflict
	}

	ctx := c.Request().Context()
	if status == http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", zap.Error(err))
	} else {
		s.logger.Debug(ctx, "request rejected", zap.Int("status", status), zap.Error(err))
	}
	return echo.NewHTTPError(status, err.Error())
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting http server", zap.String("addr", s.config.Addr), zap.String("root", s.root))
		errCh <- s.echo.Start(s.config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
