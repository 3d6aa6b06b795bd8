// Package fsys provides the directory handle projects are built on.
//
// A Dir is a live handle: its base name is always read from the current
// path, and hosts that rename or move a directory retarget the handle so
// every holder observes the new location. On filesystems that expose file
// identity (the OS filesystem) the handle also follows a rename made
// behind its back, as long as the directory stays in the same parent.
package fsys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// Errors for directory handle operations.
var (
	ErrNilDir      = errors.New("directory handle is nil")
	ErrNotDir      = errors.New("not a directory")
	ErrEmptyPath   = errors.New("directory path cannot be empty")
	ErrInvalidName = errors.New("invalid file name")
)

// FileRef identifies a single entry below a directory.
type FileRef struct {
	// Path is the entry's path at the time it was listed.
	Path string `json:"path" yaml:"path"`

	// Name is the entry's base name.
	Name string `json:"name" yaml:"name"`

	// IsDir reports whether the entry was a directory when listed.
	IsDir bool `json:"is_dir" yaml:"is_dir"`
}

// Dir is a handle to a directory on an afero filesystem.
type Dir struct {
	fs afero.Fs

	mu   sync.RWMutex
	path string

	// id is the directory's identity, nil when the filesystem has none.
	id os.FileInfo
}

// Open returns a handle for an existing directory.
func Open(fs afero.Fs, path string) (*Dir, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	clean := filepath.Clean(path)

	info, err := fs.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", clean, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, clean)
	}

	return &Dir{fs: fs, path: clean, id: identity(info)}, nil
}

// identity returns info when os.SameFile can compare it, which holds for
// FileInfo values produced by the os package.
func identity(info os.FileInfo) os.FileInfo {
	if os.SameFile(info, info) {
		return info
	}
	return nil
}

// OpenOS returns a handle backed by the operating system filesystem.
func OpenOS(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return Open(afero.NewOsFs(), abs)
}

// Fs returns the filesystem the handle lives on.
func (d *Dir) Fs() afero.Fs {
	return d.fs
}

// Path returns the current path of the directory.
func (d *Dir) Path() string {
	d.mu.RLock()
	path, id := d.path, d.id
	d.mu.RUnlock()

	if id == nil {
		return path
	}
	info, err := d.fs.Stat(path)
	if err == nil && os.SameFile(info, id) {
		return path
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return path
	}

	found, ok := d.locate(filepath.Dir(path), id)
	if !ok {
		return path
	}
	d.mu.Lock()
	if d.path == path {
		d.path = found
	}
	path = d.path
	d.mu.Unlock()
	return path
}

// locate searches parent for the directory with identity id.
func (d *Dir) locate(parent string, id os.FileInfo) (string, bool) {
	infos, err := afero.ReadDir(d.fs, parent)
	if err != nil {
		return "", false
	}
	for _, info := range infos {
		if info.IsDir() && os.SameFile(info, id) {
			return filepath.Join(parent, info.Name()), true
		}
	}
	return "", false
}

// Name returns the current base name of the directory.
func (d *Dir) Name() string {
	return filepath.Base(d.Path())
}

// Exists reports whether the directory is still present.
func (d *Dir) Exists() bool {
	info, err := d.fs.Stat(d.Path())
	return err == nil && info.IsDir()
}

// Child returns the direct child with the given name, if present.
func (d *Dir) Child(name string) (FileRef, bool) {
	if err := ValidateName(name); err != nil {
		return FileRef{}, false
	}
	p := filepath.Join(d.Path(), name)
	info, err := d.fs.Stat(p)
	if err != nil {
		return FileRef{}, false
	}
	return FileRef{Path: p, Name: name, IsDir: info.IsDir()}, true
}

// Children lists the direct children of the directory sorted by name.
// It fails rather than returning a partial listing.
func (d *Dir) Children() ([]FileRef, error) {
	root := d.Path()
	infos, err := afero.ReadDir(d.fs, root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}

	refs := make([]FileRef, 0, len(infos))
	for _, info := range infos {
		refs = append(refs, FileRef{
			Path:  filepath.Join(root, info.Name()),
			Name:  info.Name(),
			IsDir: info.IsDir(),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Sub returns a handle for the named child directory.
func (d *Dir) Sub(name string) (*Dir, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return Open(d.fs, filepath.Join(d.Path(), name))
}

// Parent returns the path of the directory containing d.
func (d *Dir) Parent() string {
	return filepath.Dir(d.Path())
}

// Retarget points the handle at a new location after the host has moved
// or renamed the directory. The new path must exist.
func (d *Dir) Retarget(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	clean := filepath.Clean(path)
	info, err := d.fs.Stat(clean)
	if err != nil {
		return fmt.Errorf("stat %s: %w", clean, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDir, clean)
	}

	d.mu.Lock()
	d.path = clean
	d.id = identity(info)
	d.mu.Unlock()
	return nil
}

// Rename renames the directory in place and retargets the handle.
func (d *Dir) Rename(newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	d.Path() // pick up an external rename first

	d.mu.Lock()
	defer d.mu.Unlock()

	target := filepath.Join(filepath.Dir(d.path), newName)
	if _, err := d.fs.Stat(target); err == nil {
		return fmt.Errorf("rename %s: %w", target, os.ErrExist)
	}
	if err := d.fs.Rename(d.path, target); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", d.path, target, err)
	}
	d.path = target
	return nil
}

// String implements fmt.Stringer.
func (d *Dir) String() string {
	return d.Path()
}

// ValidateName rejects names that would escape the directory.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, c := range name {
		if c == '/' || c == '\\' || c == '\x00' {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}
