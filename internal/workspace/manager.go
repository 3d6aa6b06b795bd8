package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/hooks"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// DefaultCacheSize bounds the number of cached projects when none is set.
const DefaultCacheSize = 128

// Manager loads projects through a Factory and caches them by root path.
type Manager struct {
	fs      afero.Fs
	factory *project.Factory
	logger  *logging.Logger

	// mu serializes load-or-get so concurrent Finds share one Project.
	mu    sync.Mutex
	cache *lru.Cache[string, *project.Project]
}

// NewManager creates a Manager and registers its cache maintenance hooks
// on the factory's hook manager.
func NewManager(fs afero.Fs, factory *project.Factory, size int, logger *logging.Logger) (*Manager, error) {
	if factory == nil {
		return nil, fmt.Errorf("workspace manager: factory is required")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	cache, err := lru.New[string, *project.Project](size)
	if err != nil {
		return nil, fmt.Errorf("creating project cache: %w", err)
	}

	m := &Manager{
		fs:      fs,
		factory: factory,
		logger:  logger.Named("workspace"),
		cache:   cache,
	}

	h := factory.Hooks()
	h.Register(hooks.HookRenamed, m.onRelocated)
	h.Register(hooks.HookMoved, m.onRelocated)
	h.Register(hooks.HookDeleted, m.onDeleted)

	return m, nil
}

// Find returns the project rooted at path, or (nil, nil) when path is not
// a project. A cached project whose marker has gone, or whose directory
// now lives elsewhere, is evicted.
func (m *Manager) Find(path string) (*project.Project, error) {
	if path == "" {
		return nil, fsys.ErrEmptyPath
	}
	key := filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.cache.Get(key); ok {
		if p.Path() == key && m.factory.IsProject(p.Dir()) {
			return p, nil
		}
		m.cache.Remove(key)
	}

	dir, err := fsys.Open(m.fs, key)
	if err != nil {
		return nil, err
	}
	p, err := m.factory.Load(dir)
	if err != nil || p == nil {
		return nil, err
	}
	m.cache.Add(key, p)
	return p, nil
}

// FindAll loads each path in order, skipping paths that are not projects.
func (m *Manager) FindAll(paths []string) ([]*project.Project, error) {
	out := make([]*project.Project, 0, len(paths))
	for _, path := range paths {
		p, err := m.Find(path)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// Forget drops the cached project rooted at path.
func (m *Manager) Forget(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Remove(filepath.Clean(path))
}

// Len returns the number of cached projects.
func (m *Manager) Len() int {
	return m.cache.Len()
}

// Paths returns the cached project roots, sorted.
func (m *Manager) Paths() []string {
	keys := m.cache.Keys()
	sort.Strings(keys)
	return keys
}

// onRelocated re-keys a project after rename or move. The old root is the
// event's OriginalPath, or the project path the lifecycle put in ctx.
func (m *Manager) onRelocated(ctx context.Context, ev hooks.Event) error {
	old := ev.OriginalPath
	if old == "" {
		old = logging.ProjectFromContext(ctx)
	}
	if old == "" || old == ev.ProjectPath {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.cache.Peek(old)
	if !ok {
		return nil
	}
	m.cache.Remove(old)
	m.cache.Add(p.Path(), p)

	m.logger.Debug(ctx, "project re-keyed",
		zap.String("from", old),
		zap.String("to", p.Path()),
	)
	return nil
}

func (m *Manager) onDeleted(ctx context.Context, ev hooks.Event) error {
	m.Forget(ev.ProjectPath)
	m.logger.Debug(ctx, "project evicted", zap.String("path", ev.ProjectPath))
	return nil
}
