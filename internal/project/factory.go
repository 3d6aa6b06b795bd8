package project

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/hooks"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/view"
)

// Marker is the file whose presence identifies a project directory.
const Marker = "manifest.json"

// Factory recognizes project directories and builds Projects.
//
// Every Project built by a Factory shares its host, node factory, hook
// manager and logger.
type Factory struct {
	host   Host
	nodes  view.NodeFactory
	hooks  *hooks.Manager
	logger *logging.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithNodeFactory sets the builder for generic tree nodes.
func WithNodeFactory(nf view.NodeFactory) Option {
	return func(f *Factory) {
		if nf != nil {
			f.nodes = nf
		}
	}
}

// WithHooks sets the hook manager notifications are dispatched to.
func WithHooks(m *hooks.Manager) Option {
	return func(f *Factory) {
		if m != nil {
			f.hooks = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFactory creates a Factory. host may be nil, in which case
// ActionDispatcher.Invoke fails with ErrNoHost.
func NewFactory(host Host, opts ...Option) *Factory {
	f := &Factory{
		host:   host,
		nodes:  view.DirNodeFactory{},
		hooks:  hooks.NewManager(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetHost replaces the host. Used when the host itself needs the Factory.
func (f *Factory) SetHost(host Host) {
	f.host = host
}

// Hooks returns the hook manager shared by all Projects of this Factory.
func (f *Factory) Hooks() *hooks.Manager {
	return f.hooks
}

// IsProject reports whether dir has a direct child named manifest.json.
func (f *Factory) IsProject(dir *fsys.Dir) bool {
	if dir == nil {
		return false
	}
	ref, ok := dir.Child(Marker)
	return ok && !ref.IsDir
}

// Load returns a new Project for dir, or (nil, nil) when dir is not a
// project. Only a nil handle is an error.
func (f *Factory) Load(dir *fsys.Dir) (*Project, error) {
	if dir == nil {
		return nil, fsys.ErrNilDir
	}
	if !f.IsProject(dir) {
		return nil, nil
	}

	f.logger.Debug(context.Background(), "project recognized", zap.String("path", dir.Path()))
	return newProject(dir, f), nil
}

// Save is a no-op: the marker file is the only persisted state.
func (f *Factory) Save(_ *Project) error {
	return nil
}
