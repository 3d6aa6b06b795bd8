package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/workspace"
)

// Server is an MCP server over one workspace root.
type Server struct {
	mcp     *mcp.Server
	root    string
	manager *workspace.Manager
	scanner *workspace.Scanner
	metrics *Metrics
	logger  *logging.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "crxproject")
	Name string

	// Version is the server version (default: "1.0.0")
	Version string

	// Logger for structured logging
	Logger *logging.Logger

	// Meter receives tool metrics. Nil uses the global provider.
	Meter metric.Meter
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "crxproject",
		Version: "1.0.0",
		Logger:  logging.NewNop(),
	}
}

// NewServer creates an MCP server for the projects under root.
func NewServer(cfg *Config, root string, manager *workspace.Manager, scanner *workspace.Scanner) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if root == "" {
		return nil, fsys.ErrEmptyPath
	}
	if manager == nil {
		return nil, fmt.Errorf("workspace manager is required")
	}
	if scanner == nil {
		return nil, fmt.Errorf("workspace scanner is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	logger := cfg.Logger.Named("mcp")
	s := &Server{
		mcp:     mcpServer,
		root:    filepath.Clean(root),
		manager: manager,
		scanner: scanner,
		metrics: NewMetrics(cfg.Meter, logger),
		logger:  logger,
	}
	s.registerTools()

	return s, nil
}

// Run serves on the stdio transport until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves a single session on t.
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	s.logger.Info(ctx, "starting MCP server", zap.String("root", s.root))
	if err := s.mcp.Run(ctx, t); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}
