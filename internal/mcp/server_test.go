package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/crxproject/internal/config"
	"github.com/fyrsmithlabs/crxproject/internal/host"
	"github.com/fyrsmithlabs/crxproject/internal/lifecycle"
	"github.com/fyrsmithlabs/crxproject/internal/project"
	"github.com/fyrsmithlabs/crxproject/internal/workspace"
)

type testEnv struct {
	fs      afero.Fs
	server  *Server
	session *mcp.ClientSession
}

func newTestServer(t *testing.T) (*Server, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/ws/app/manifest.json",
		"/ws/app/main.go",
		"/ws/lib/manifest.json",
		"/ws/plain/readme.md",
	} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}
	require.NoError(t, fs.MkdirAll("/ws/dest", 0o755))

	runner, err := lifecycle.NewRunner()
	require.NoError(t, err)
	factory := project.NewFactory(host.New(runner, nil))
	manager, err := workspace.NewManager(fs, factory, 8, nil)
	require.NoError(t, err)
	scanner := workspace.NewScanner(fs, factory, config.Default().Workspace, nil)

	s, err := NewServer(nil, "/ws", manager, scanner)
	require.NoError(t, err)
	return s, fs
}

// newTestEnv connects a client to the server over in-memory transports.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, fs := newTestServer(t)
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.mcp.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return &testEnv{fs: fs, server: s, session: cs}
}

func (e *testEnv) call(t *testing.T, tool string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := e.session.CallTool(context.Background(), &mcp.CallToolParams{Name: tool, Arguments: args})
	require.NoError(t, err)
	return res
}

// decode unmarshals a result's structured content into out.
func decode(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
}

func TestNewServer(t *testing.T) {
	s, fs := newTestServer(t)
	factory := project.NewFactory(nil)
	manager, err := workspace.NewManager(fs, factory, 8, nil)
	require.NoError(t, err)
	scanner := workspace.NewScanner(fs, factory, config.Default().Workspace, nil)

	assert.Equal(t, "/ws", s.root)

	_, err = NewServer(nil, "", manager, scanner)
	assert.Error(t, err)
	_, err = NewServer(nil, "/ws", nil, scanner)
	assert.Error(t, err)
	_, err = NewServer(nil, "/ws", manager, nil)
	assert.Error(t, err)
}

func TestTools_Listed(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"project_scan", "project_inspect", "project_invoke"}, names)
}

func TestProjectScan(t *testing.T) {
	env := newTestEnv(t)

	res := env.call(t, "project_scan", map[string]any{})
	require.False(t, res.IsError)

	var out scanOutput
	decode(t, res, &out)
	assert.Equal(t, "/ws", out.Root)
	assert.Equal(t, []string{"/ws/app", "/ws/lib"}, out.Projects)

	res = env.call(t, "project_scan", map[string]any{"path": "plain"})
	require.False(t, res.IsError)
	decode(t, res, &out)
	assert.Empty(t, out.Projects)

	res = env.call(t, "project_scan", map[string]any{"path": "/etc"})
	assert.True(t, res.IsError)
}

func TestProjectInspect(t *testing.T) {
	env := newTestEnv(t)

	res := env.call(t, "project_inspect", map[string]any{"path": "app"})
	require.False(t, res.IsError)

	var info project.Info
	decode(t, res, &info)
	assert.Equal(t, "app", info.Name)
	assert.Equal(t, "/ws/app", info.Path)
	assert.Len(t, info.Capabilities, 6)
	assert.Len(t, info.Classification["delete-operation"].Data, 2)

	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "rename, move, copy, delete")
}

func TestProjectInvoke(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		check     func(t *testing.T, fs afero.Fs)
	}{
		{
			name: "rename",
			args: map[string]any{"path": "app", "command": "Rename", "new_name": "service"},
			check: func(t *testing.T, fs afero.Fs) {
				ok, _ := afero.Exists(fs, "/ws/service/main.go")
				assert.True(t, ok)
			},
		},
		{
			name: "move",
			args: map[string]any{"path": "app", "command": "move", "destination": "dest"},
			check: func(t *testing.T, fs afero.Fs) {
				ok, _ := afero.Exists(fs, "/ws/dest/app/manifest.json")
				assert.True(t, ok)
			},
		},
		{
			name: "delete",
			args: map[string]any{"path": "lib", "command": "delete"},
			check: func(t *testing.T, fs afero.Fs) {
				ok, _ := afero.Exists(fs, "/ws/lib")
				assert.False(t, ok)
			},
		},
		{name: "unknown command", args: map[string]any{"path": "app", "command": "archive"}, wantError: true},
		{name: "missing command", args: map[string]any{"path": "app", "command": ""}, wantError: true},
		{name: "not a project", args: map[string]any{"path": "plain", "command": "delete"}, wantError: true},
		{name: "outside root", args: map[string]any{"path": "../x", "command": "delete"}, wantError: true},
		{name: "target exists", args: map[string]any{"path": "app", "command": "rename", "new_name": "lib"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			res := env.call(t, "project_invoke", tt.args)
			assert.Equal(t, tt.wantError, res.IsError)
			if tt.check != nil {
				tt.check(t, env.fs)
			}
		})
	}
}

func TestProjectInvoke_SessionSurvivesErrors(t *testing.T) {
	env := newTestEnv(t)

	res := env.call(t, "project_invoke", map[string]any{"path": "nope", "command": "delete"})
	require.True(t, res.IsError)

	res = env.call(t, "project_scan", map[string]any{})
	assert.False(t, res.IsError)
}
