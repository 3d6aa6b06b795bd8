package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// Errors for path resolution against a served root.
var (
	ErrOutsideRoot = errors.New("path is outside the workspace root")
	ErrNotProject  = errors.New("not a project")
)

// Resolve makes path absolute against root and rejects results that
// escape it. root itself is allowed.
func Resolve(root, path string) (string, error) {
	root = filepath.Clean(root)
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return path, nil
}

// Open is Find for callers that need a project: a directory that is not
// one fails with ErrNotProject.
func (m *Manager) Open(path string) (*project.Project, error) {
	p, err := m.Find(path)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotProject, filepath.Clean(path))
	}
	return p, nil
}
