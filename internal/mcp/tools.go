package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/host"
	"github.com/fyrsmithlabs/crxproject/internal/project"
	"github.com/fyrsmithlabs/crxproject/internal/workspace"
)

type scanInput struct {
	Path string `json:"path,omitempty" jsonschema:"Directory to scan, relative to the workspace root (default: the root)"`
}

type scanOutput struct {
	Root     string   `json:"root" jsonschema:"Directory that was scanned"`
	Projects []string `json:"projects" jsonschema:"Project roots found, sorted"`
}

type inspectInput struct {
	Path string `json:"path" jsonschema:"Project directory, relative to the workspace root or absolute inside it"`
}

type invokeInput struct {
	Path        string `json:"path" jsonschema:"Project directory, relative to the workspace root or absolute inside it"`
	Command     string `json:"command" jsonschema:"One of rename, move, copy, delete (case-insensitive)"`
	NewName     string `json:"new_name,omitempty" jsonschema:"New directory name for rename, or target name for move and copy"`
	Destination string `json:"destination,omitempty" jsonschema:"Parent directory for move and copy, inside the workspace root"`
}

type invokeOutput struct {
	Path    string `json:"path" jsonschema:"Project root the command ran on"`
	Command string `json:"command" jsonschema:"Command that ran"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "project_scan",
		Description: "List the project directories (those containing manifest.json) under the workspace root. Ignored directories are skipped.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args scanInput) (*mcp.CallToolResult, scanOutput, error) {
		out, err := instrument(ctx, s, "project_scan", func() (scanOutput, error) {
			return s.scan(ctx, args)
		})
		if err != nil {
			return nil, scanOutput{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Found %d projects under %s:\n%s", len(out.Projects), out.Root, strings.Join(out.Projects, "\n"))},
			},
		}, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "project_inspect",
		Description: "Describe a project: its name, capabilities, enabled commands and the files each structural operation would cover.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args inspectInput) (*mcp.CallToolResult, project.Info, error) {
		out, err := instrument(ctx, s, "project_inspect", func() (project.Info, error) {
			return s.inspect(args)
		})
		if err != nil {
			return nil, project.Info{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Project %s at %s supports: %s", out.DisplayName, out.Path, commandNames(out.Commands))},
			},
		}, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "project_invoke",
		Description: "Run a structural command on a project: rename (new_name), move (destination, optional new_name), copy (destination, optional new_name) or delete.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args invokeInput) (*mcp.CallToolResult, invokeOutput, error) {
		out, err := instrument(ctx, s, "project_invoke", func() (invokeOutput, error) {
			return s.invoke(ctx, args)
		})
		if err != nil {
			return nil, invokeOutput{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("%s completed for %s", out.Command, out.Path)},
			},
		}, out, nil
	})
}

// instrument records metrics and logs failures around a tool body.
func instrument[T any](ctx context.Context, s *Server, tool string, fn func() (T, error)) (T, error) {
	s.metrics.IncrementActive(ctx, tool)
	defer s.metrics.DecrementActive(ctx, tool)

	start := time.Now()
	out, err := fn()
	s.metrics.RecordInvocation(ctx, tool, time.Since(start), err)
	if err != nil {
		s.logger.Warn(ctx, "tool failed", zap.String("tool", tool), zap.Error(err))
	}
	return out, err
}

func (s *Server) scan(ctx context.Context, args scanInput) (scanOutput, error) {
	dir := s.root
	if args.Path != "" {
		resolved, err := workspace.Resolve(s.root, args.Path)
		if err != nil {
			return scanOutput{}, err
		}
		dir = resolved
	}

	paths, err := s.scanner.Scan(ctx, dir)
	if err != nil {
		return scanOutput{}, fmt.Errorf("scan failed: %w", err)
	}
	if paths == nil {
		paths = []string{}
	}
	return scanOutput{Root: dir, Projects: paths}, nil
}

func (s *Server) inspect(args inspectInput) (project.Info, error) {
	p, err := s.open(args.Path)
	if err != nil {
		return project.Info{}, err
	}
	return project.Describe(p)
}

func (s *Server) invoke(ctx context.Context, args invokeInput) (invokeOutput, error) {
	if args.Command == "" {
		return invokeOutput{}, fmt.Errorf("%w: command", host.ErrMissingParameter)
	}
	p, err := s.open(args.Path)
	if err != nil {
		return invokeOutput{}, err
	}

	params := project.Params{NewName: args.NewName}
	if args.Destination != "" {
		dest, err := workspace.Resolve(s.root, args.Destination)
		if err != nil {
			return invokeOutput{}, err
		}
		params.Destination = dest
	}

	if err := p.Actions().Invoke(ctx, args.Command, params); err != nil {
		return invokeOutput{}, err
	}
	return invokeOutput{Path: p.Path(), Command: strings.ToLower(args.Command)}, nil
}

func (s *Server) open(path string) (*project.Project, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path", host.ErrMissingParameter)
	}
	abs, err := workspace.Resolve(s.root, path)
	if err != nil {
		return nil, err
	}
	return s.manager.Open(abs)
}

func commandNames(states []project.CommandState) string {
	names := make([]string, 0, len(states))
	for _, c := range states {
		if c.Enabled {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ", ")
}
