// Package host provides the default structural operations for projects.
//
// Each operation runs the project lifecycle: the project's capabilities
// classify the files and fire notifications, and the host touches exactly
// the classified files.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/lifecycle"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// Errors returned by host operations.
var (
	ErrMissingParameter   = errors.New("missing parameter")
	ErrTargetExists       = errors.New("target already exists")
	ErrInvalidDestination = errors.New("invalid destination")
)

// Host implements project.Host on the project's own filesystem.
type Host struct {
	runner *lifecycle.Runner
	logger *logging.Logger
}

var _ project.Host = (*Host)(nil)

// New creates a Host. A nil logger discards output.
func New(runner *lifecycle.Runner, logger *logging.Logger) *Host {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Host{runner: runner, logger: logger}
}

// Rename renames the project root in place.
func (h *Host) Rename(ctx context.Context, p *project.Project, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: new name", ErrMissingParameter)
	}
	if err := fsys.ValidateName(newName); err != nil {
		return err
	}
	dir := p.Dir()
	if exists, _ := afero.Exists(dir.Fs(), filepath.Join(dir.Parent(), newName)); exists {
		return fmt.Errorf("%w: %s", ErrTargetExists, filepath.Join(dir.Parent(), newName))
	}
	d, err := lifecycle.NewDescriptor(lifecycle.Rename, p, project.Params{NewName: newName})
	if err != nil {
		return err
	}

	_, err = h.runner.Run(ctx, d, func(ctx context.Context, _ project.FileSet) (lifecycle.Outcome, error) {
		if err := dir.Rename(newName); err != nil {
			if errors.Is(err, os.ErrExist) {
				return lifecycle.Outcome{}, fmt.Errorf("%w: %s", ErrTargetExists, filepath.Join(dir.Parent(), newName))
			}
			return lifecycle.Outcome{}, err
		}
		h.logger.Info(ctx, "project renamed", zap.String("to", dir.Path()))
		return lifecycle.Outcome{NewName: newName}, nil
	})
	return err
}

// Move moves the classified files into Destination/NewName and removes the
// emptied source root. NewName defaults to the current name. If a file
// cannot be moved, the files already moved are put back and the created
// target is removed.
func (h *Host) Move(ctx context.Context, p *project.Project, params project.Params) error {
	params, target, err := resolveTarget(p, params)
	if err != nil {
		return err
	}
	d, err := lifecycle.NewDescriptor(lifecycle.Move, p, params)
	if err != nil {
		return err
	}

	_, err = h.runner.Run(ctx, d, func(ctx context.Context, files project.FileSet) (lifecycle.Outcome, error) {
		dir := p.Dir()
		fs := dir.Fs()
		source := dir.Path()
		if err := createTarget(fs, target); err != nil {
			return lifecycle.Outcome{}, err
		}

		moved := make([]fsys.FileRef, 0, files.Len())
		for _, ref := range allFiles(files) {
			if err := fs.Rename(ref.Path, filepath.Join(target, ref.Name)); err != nil {
				h.undoMove(ctx, fs, target, moved)
				return lifecycle.Outcome{}, fmt.Errorf("moving %s: %w", ref.Path, err)
			}
			moved = append(moved, ref)
		}

		if err := dir.Retarget(target); err != nil {
			h.undoMove(ctx, fs, target, moved)
			return lifecycle.Outcome{}, err
		}
		h.removeIfEmpty(ctx, fs, source)
		h.logger.Info(ctx, "project moved", zap.String("from", source), zap.String("to", target))
		return lifecycle.Outcome{NewName: params.NewName, OriginalPath: source}, nil
	})
	return err
}

// Copy creates Destination/NewName and copies the classified files into
// it. NewName defaults to the current name. A failed copy removes the
// target again.
func (h *Host) Copy(ctx context.Context, p *project.Project, params project.Params) error {
	params, target, err := resolveTarget(p, params)
	if err != nil {
		return err
	}
	d, err := lifecycle.NewDescriptor(lifecycle.Copy, p, params)
	if err != nil {
		return err
	}

	_, err = h.runner.Run(ctx, d, func(ctx context.Context, files project.FileSet) (lifecycle.Outcome, error) {
		fs := p.Dir().Fs()
		if err := createTarget(fs, target); err != nil {
			return lifecycle.Outcome{}, err
		}

		for _, ref := range allFiles(files) {
			if err := copyEntry(fs, ref, filepath.Join(target, ref.Name)); err != nil {
				if rmErr := fs.RemoveAll(target); rmErr != nil {
					h.logger.Warn(ctx, "failed to remove partial copy", zap.String("path", target), zap.Error(rmErr))
				}
				return lifecycle.Outcome{}, err
			}
		}
		h.logger.Info(ctx, "project copied",
			zap.String("to", target),
			zap.Int("files", files.Len()),
		)
		return lifecycle.Outcome{NewName: params.NewName}, nil
	})
	return err
}

// Delete removes every classified file, recursively for directories, then
// the root if nothing else appeared in the meantime.
func (h *Host) Delete(ctx context.Context, p *project.Project) error {
	d, err := lifecycle.NewDescriptor(lifecycle.Delete, p, project.Params{})
	if err != nil {
		return err
	}

	_, err = h.runner.Run(ctx, d, func(ctx context.Context, files project.FileSet) (lifecycle.Outcome, error) {
		fs := p.Dir().Fs()
		for _, ref := range allFiles(files) {
			if err := fs.RemoveAll(ref.Path); err != nil {
				return lifecycle.Outcome{}, fmt.Errorf("removing %s: %w", ref.Path, err)
			}
		}
		h.removeIfEmpty(ctx, fs, p.Path())
		h.logger.Info(ctx, "project deleted", zap.Int("files", files.Len()))
		return lifecycle.Outcome{}, nil
	})
	return err
}

// resolveTarget fills in the default name and validates Destination/NewName
// against the project's current location.
func resolveTarget(p *project.Project, params project.Params) (project.Params, string, error) {
	if params.Destination == "" {
		return params, "", fmt.Errorf("%w: destination", ErrMissingParameter)
	}
	if params.NewName == "" {
		params.NewName = p.Dir().Name()
	}
	if err := fsys.ValidateName(params.NewName); err != nil {
		return params, "", err
	}

	source := p.Path()
	target := filepath.Join(filepath.Clean(params.Destination), params.NewName)
	if target == source || strings.HasPrefix(target, source+string(filepath.Separator)) {
		return params, "", fmt.Errorf("%w: %s is inside %s", ErrInvalidDestination, target, source)
	}
	if exists, _ := afero.Exists(p.Dir().Fs(), target); exists {
		return params, "", fmt.Errorf("%w: %s", ErrTargetExists, target)
	}
	return params, target, nil
}

// createTarget creates the target directory, which must not exist yet.
func createTarget(fs afero.Fs, target string) error {
	if _, err := fs.Stat(target); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, target)
	}
	if err := fs.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	return nil
}

// undoMove puts moved files back in reverse order and removes target.
func (h *Host) undoMove(ctx context.Context, fs afero.Fs, target string, moved []fsys.FileRef) {
	for i := len(moved) - 1; i >= 0; i-- {
		ref := moved[i]
		if err := fs.Rename(filepath.Join(target, ref.Name), ref.Path); err != nil {
			h.logger.Error(ctx, "failed to restore moved file",
				zap.String("path", ref.Path),
				zap.Error(err),
			)
		}
	}
	h.removeIfEmpty(ctx, fs, target)
}

// removeIfEmpty removes dir when it has no entries left. Entries created
// after classification are not this operation's to touch.
func (h *Host) removeIfEmpty(ctx context.Context, fs afero.Fs, dir string) {
	empty, err := afero.IsEmpty(fs, dir)
	if err != nil || !empty {
		h.logger.Warn(ctx, "leaving project root in place", zap.String("path", dir), zap.Error(err))
		return
	}
	if err := fs.Remove(dir); err != nil {
		h.logger.Warn(ctx, "failed to remove project root", zap.String("path", dir), zap.Error(err))
	}
}

func allFiles(set project.FileSet) []fsys.FileRef {
	out := make([]fsys.FileRef, 0, set.Len())
	out = append(out, set.Metadata...)
	return append(out, set.Data...)
}

// copyEntry copies a file or a directory tree.
func copyEntry(fs afero.Fs, ref fsys.FileRef, dst string) error {
	if !ref.IsDir {
		return copyFile(fs, ref.Path, dst)
	}
	return afero.Walk(fs, ref.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(ref.Path, path)
		if err != nil {
			return err
		}
		to := filepath.Join(dst, rel)
		if info.IsDir() {
			return fs.MkdirAll(to, info.Mode().Perm())
		}
		return copyFile(fs, path, to)
	})
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
