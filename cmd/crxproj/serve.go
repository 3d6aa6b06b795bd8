package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	httpserver "github.com/fyrsmithlabs/crxproject/internal/http"
	"github.com/fyrsmithlabs/crxproject/internal/mcp"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:9090", "listen address")
	rootCmd.AddCommand(serveCmd, mcpCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve ROOT",
	Short: "Serve the projects under ROOT over HTTP",
	Long: `Serve the projects under ROOT over a JSON HTTP API.

Endpoints:
  GET  /health
  GET  /metrics
  GET  /api/v1/projects
  GET  /api/v1/projects/info?path=DIR
  POST /api/v1/projects/invoke   {"path", "command", "new_name", "destination"}`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp ROOT",
	Short: "Serve the projects under ROOT to an MCP client on stdio",
	Args:  cobra.ExactArgs(1),
	RunE:  runMCP,
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := absPath(args[0])
	if err != nil {
		return err
	}

	cfg := httpserver.DefaultConfig()
	cfg.Addr = serveAddr
	cfg.Meter = current.telemetry.Meter("github.com/fyrsmithlabs/crxproject/internal/http")

	srv, err := httpserver.NewServer(root, current.manager, current.scanner, current.logger, cfg)
	if err != nil {
		return err
	}
	return srv.Start(cmd.Context())
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := absPath(args[0])
	if err != nil {
		return err
	}

	cfg := mcp.DefaultConfig()
	cfg.Version = version
	cfg.Logger = current.logger
	cfg.Meter = current.telemetry.Meter("github.com/fyrsmithlabs/crxproject/internal/mcp")

	srv, err := mcp.NewServer(cfg, root, current.manager, current.scanner)
	if err != nil {
		return err
	}
	if err := srv.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
