package workspace

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/crxproject/internal/config"
	"github.com/fyrsmithlabs/crxproject/internal/host"
	"github.com/fyrsmithlabs/crxproject/internal/lifecycle"
	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// newTestFs builds an in-memory tree. Paths ending in "/" are directories.
func newTestFs(t *testing.T, paths ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			require.NoError(t, fs.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}
	return fs
}

// newTestFactory returns a factory wired to a real host.
func newTestFactory(t *testing.T) *project.Factory {
	t.Helper()
	runner, err := lifecycle.NewRunner()
	require.NoError(t, err)
	return project.NewFactory(host.New(runner, nil))
}

func newTestManager(t *testing.T, fs afero.Fs, size int) (*Manager, *project.Factory) {
	t.Helper()
	f := newTestFactory(t)
	m, err := NewManager(fs, f, size, nil)
	require.NoError(t, err)
	return m, f
}

func TestNewManager_RequiresFactory(t *testing.T) {
	_, err := NewManager(afero.NewMemMapFs(), nil, 4, nil)
	require.Error(t, err)
}

func TestManager_Find(t *testing.T) {
	fs := newTestFs(t,
		"/ws/app/manifest.json",
		"/ws/plain/readme.md",
		"/ws/odd/manifest.json/",
	)
	m, _ := newTestManager(t, fs, 4)

	tests := []struct {
		name    string
		path    string
		want    bool
		wantErr bool
	}{
		{name: "project", path: "/ws/app", want: true},
		{name: "unclean path", path: "/ws/app/", want: true},
		{name: "plain directory", path: "/ws/plain"},
		{name: "marker is a directory", path: "/ws/odd"},
		{name: "missing", path: "/ws/missing", wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := m.Find(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want {
				require.NotNil(t, p)
				assert.Equal(t, "/ws/app", p.Path())
			} else {
				assert.Nil(t, p)
			}
		})
	}
	assert.Equal(t, 1, m.Len())
}

func TestManager_FindReturnsCachedProject(t *testing.T) {
	fs := newTestFs(t, "/ws/app/manifest.json")
	m, _ := newTestManager(t, fs, 4)

	first, err := m.Find("/ws/app")
	require.NoError(t, err)
	second, err := m.Find("/ws/app")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestManager_FindConcurrentSharesProject(t *testing.T) {
	fs := newTestFs(t, "/ws/app/manifest.json")
	m, _ := newTestManager(t, fs, 4)

	const n = 16
	results := make([]*project.Project, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := m.Find("/ws/app")
			assert.NoError(t, err)
			results[i] = p
		}()
	}
	wg.Wait()

	for _, p := range results {
		assert.Same(t, results[0], p)
	}
}

func TestManager_FindEvictsWhenMarkerRemoved(t *testing.T) {
	fs := newTestFs(t, "/ws/app/manifest.json")
	m, _ := newTestManager(t, fs, 4)

	_, err := m.Find("/ws/app")
	require.NoError(t, err)
	require.NoError(t, fs.Remove("/ws/app/manifest.json"))

	p, err := m.Find("/ws/app")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 0, m.Len())
}

func TestManager_CacheIsBounded(t *testing.T) {
	fs := newTestFs(t,
		"/ws/a/manifest.json",
		"/ws/b/manifest.json",
		"/ws/c/manifest.json",
	)
	m, _ := newTestManager(t, fs, 2)

	ps, err := m.FindAll([]string{"/ws/a", "/ws/b", "/ws/c"})
	require.NoError(t, err)
	assert.Len(t, ps, 3)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"/ws/b", "/ws/c"}, m.Paths())
}

func TestManager_Forget(t *testing.T) {
	fs := newTestFs(t, "/ws/app/manifest.json")
	m, _ := newTestManager(t, fs, 4)

	_, err := m.Find("/ws/app")
	require.NoError(t, err)
	m.Forget("/ws/app/")
	assert.Equal(t, 0, m.Len())
}

func TestManager_FollowsLifecycle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		invoke    func(p *project.Project) error
		wantPaths []string
	}{
		{
			name: "rename re-keys",
			invoke: func(p *project.Project) error {
				return p.Actions().Invoke(ctx, project.CommandRename, project.Params{NewName: "renamed"})
			},
			wantPaths: []string{"/ws/renamed"},
		},
		{
			name: "move re-keys",
			invoke: func(p *project.Project) error {
				return p.Actions().Invoke(ctx, project.CommandMove, project.Params{Destination: "/other"})
			},
			wantPaths: []string{"/other/app"},
		},
		{
			name: "copy leaves the original",
			invoke: func(p *project.Project) error {
				return p.Actions().Invoke(ctx, project.CommandCopy, project.Params{Destination: "/other"})
			},
			wantPaths: []string{"/ws/app"},
		},
		{
			name: "delete evicts",
			invoke: func(p *project.Project) error {
				return p.Actions().Invoke(ctx, project.CommandDelete, project.Params{})
			},
			wantPaths: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newTestFs(t, "/ws/app/manifest.json", "/ws/app/src/main.go", "/other/")
			m, _ := newTestManager(t, fs, 4)

			p, err := m.Find("/ws/app")
			require.NoError(t, err)
			require.NotNil(t, p)

			require.NoError(t, tt.invoke(p))
			assert.Equal(t, tt.wantPaths, m.Paths())
		})
	}
}

func TestScanner_Scan(t *testing.T) {
	fs := newTestFs(t,
		"/ws/manifest.json",
		"/ws/.gitignore",
		"/ws/app/manifest.json",
		"/ws/libs/core/manifest.json",
		"/ws/libs/util/readme.md",
		"/ws/build/out/manifest.json",
		"/ws/node_modules/dep/manifest.json",
		"/ws/a/b/c/d/e/manifest.json",
	)
	require.NoError(t, afero.WriteFile(fs, "/ws/.gitignore", []byte("build/\n"), 0o644))

	cfg := config.Default().Workspace
	cfg.MaxDepth = 3
	s := NewScanner(fs, newTestFactory(t), cfg, nil)

	got, err := s.Scan(context.Background(), "/ws")
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws", "/ws/app", "/ws/libs/core", "/ws/node_modules/dep"}, got)
}

func TestScanner_ScanFallbackPatterns(t *testing.T) {
	fs := newTestFs(t,
		"/ws/app/manifest.json",
		"/ws/node_modules/dep/manifest.json",
	)
	s := NewScanner(fs, newTestFactory(t), config.Default().Workspace, nil)

	got, err := s.Scan(context.Background(), "/ws")
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws/app"}, got)
}

func TestScanner_ScanUnlimitedDepth(t *testing.T) {
	fs := newTestFs(t, "/ws/a/b/c/d/e/f/manifest.json")
	cfg := config.Default().Workspace
	cfg.MaxDepth = 0
	s := NewScanner(fs, newTestFactory(t), cfg, nil)

	got, err := s.Scan(context.Background(), "/ws")
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws/a/b/c/d/e/f"}, got)
}

func TestScanner_ScanErrors(t *testing.T) {
	fs := newTestFs(t, "/ws/app/manifest.json")
	s := NewScanner(fs, newTestFactory(t), config.Default().Workspace, nil)

	_, err := s.Scan(context.Background(), "")
	require.Error(t, err)

	_, err = s.Scan(context.Background(), "/missing")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Scan(ctx, "/ws")
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "relative", path: "app", want: "/ws/app"},
		{name: "nested relative", path: "libs/core/", want: "/ws/libs/core"},
		{name: "absolute inside", path: "/ws/app", want: "/ws/app"},
		{name: "root", path: "/ws", want: "/ws"},
		{name: "dot", path: ".", want: "/ws"},
		{name: "escapes", path: "../etc", wantErr: true},
		{name: "absolute outside", path: "/etc", wantErr: true},
		{name: "sibling prefix", path: "/wsx/app", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve("/ws", tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrOutsideRoot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_Open(t *testing.T) {
	fs := newTestFs(t, "/ws/app/manifest.json", "/ws/plain/")
	m, _ := newTestManager(t, fs, 4)

	p, err := m.Open("/ws/app")
	require.NoError(t, err)
	assert.Equal(t, "/ws/app", p.Path())

	_, err = m.Open("/ws/plain")
	require.ErrorIs(t, err, ErrNotProject)
}
