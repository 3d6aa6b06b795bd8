package project

import (
	"context"
	"errors"
	"sync"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/hooks"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
)

// Common errors.
var (
	ErrUnknownCapability = errors.New("unknown capability")
	ErrInvalidCommand    = errors.New("invalid command")
	ErrNoHost            = errors.New("no host configured")
)

// Host performs the default structural operations on a project.
type Host interface {
	Rename(ctx context.Context, p *Project, newName string) error
	Move(ctx context.Context, p *Project, params Params) error
	Copy(ctx context.Context, p *Project, params Params) error
	Delete(ctx context.Context, p *Project) error
}

// Params carries the target of a structural operation.
type Params struct {
	// NewName is the new base name. Required for rename; for move and copy
	// it defaults to the current name.
	NewName string `json:"new_name,omitempty" yaml:"new_name,omitempty"`

	// Destination is the parent directory for move and copy.
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// Project is a recognized extension project rooted at a directory.
//
// The directory handle is the project's identity. It is fixed at
// construction; the host may retarget the handle after moving the
// directory on disk.
type Project struct {
	dir     *fsys.Dir
	factory *Factory

	once sync.Once
	caps *registry
}

func newProject(dir *fsys.Dir, f *Factory) *Project {
	return &Project{dir: dir, factory: f}
}

// Dir returns the root directory handle.
func (p *Project) Dir() *fsys.Dir {
	return p.dir
}

// Path returns the current root path.
func (p *Project) Path() string {
	return p.dir.Path()
}

// Hooks returns the hook manager notifications go to.
func (p *Project) Hooks() *hooks.Manager {
	return p.factory.hooks
}

// Logger returns the project logger.
func (p *Project) Logger() *logging.Logger {
	return p.factory.logger
}

// String implements fmt.Stringer.
func (p *Project) String() string {
	return p.Path()
}
