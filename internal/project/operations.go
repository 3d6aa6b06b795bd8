package project

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/hooks"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
)

// FileSet is the classification of a project's files taken when a
// structural operation begins. It is a value: later changes to the
// directory do not affect a FileSet already handed out.
type FileSet struct {
	// Metadata files are intrinsic to project identity. Always empty for
	// this project kind; manifest.json is ordinary data.
	Metadata []fsys.FileRef `json:"metadata" yaml:"metadata"`

	// Data files are the project content the host must touch.
	Data []fsys.FileRef `json:"data" yaml:"data"`
}

// Len returns the total number of classified files.
func (s FileSet) Len() int {
	return len(s.Metadata) + len(s.Data)
}

// Operation is a structural-operation capability.
type Operation interface {
	Capability
	// Classify snapshots the files the operation covers. A listing failure
	// returns an error and no partial result.
	Classify() (FileSet, error)
}

// operation holds what the three operation capabilities share.
type operation struct {
	project *Project
}

// Project implements Capability.
func (o operation) Project() *Project { return o.project }

// directChildren classifies every direct child of the root as data.
func (o operation) directChildren() (FileSet, error) {
	children, err := o.project.dir.Children()
	if err != nil {
		return FileSet{}, fmt.Errorf("classify %s: %w", o.project.Path(), err)
	}
	return FileSet{Metadata: []fsys.FileRef{}, Data: children}, nil
}

// notify dispatches ev to the hook manager. The operation id is taken from
// ctx when the lifecycle has set one.
func (o operation) notify(ctx context.Context, ev hooks.Event) error {
	if ev.ProjectPath == "" {
		ev.ProjectPath = o.project.Path()
	}
	if op, ok := logging.OperationFromContext(ctx); ok {
		ev.OperationID = op.ID
	}

	o.project.Logger().Trace(ctx, "project notification",
		zap.String("hook", string(ev.Type)),
		zap.String("path", ev.ProjectPath),
	)
	return o.project.Hooks().Execute(ctx, ev)
}

// MoveOperation classifies and notifies for move and rename.
type MoveOperation struct {
	operation
}

// Kind implements Capability.
func (m *MoveOperation) Kind() Kind { return KindMoveOperation }

// Classify returns every direct child of the root as data, sorted by name.
func (m *MoveOperation) Classify() (FileSet, error) {
	return m.directChildren()
}

// NotifyRenaming fires before the host renames the root.
func (m *MoveOperation) NotifyRenaming(ctx context.Context, newName string) error {
	return m.notify(ctx, hooks.Event{Type: hooks.HookRenaming, NewName: newName})
}

// NotifyRenamed fires after the host renamed the root.
func (m *MoveOperation) NotifyRenamed(ctx context.Context, newName string) error {
	return m.notify(ctx, hooks.Event{Type: hooks.HookRenamed, NewName: newName})
}

// NotifyMoving fires before the host moves the project.
func (m *MoveOperation) NotifyMoving(ctx context.Context) error {
	return m.notify(ctx, hooks.Event{Type: hooks.HookMoving})
}

// NotifyMoved fires after the host moved original from originalPath.
func (m *MoveOperation) NotifyMoved(ctx context.Context, original *Project, originalPath, newName string) error {
	return m.notify(ctx, hooks.Event{
		Type:         hooks.HookMoved,
		ProjectPath:  original.Path(),
		OriginalPath: originalPath,
		NewName:      newName,
	})
}

// CopyOperation classifies and notifies for copy.
type CopyOperation struct {
	operation
}

// Kind implements Capability.
func (c *CopyOperation) Kind() Kind { return KindCopyOperation }

// Classify returns two empty sets: a copy starts an independent project
// and nothing is carried over automatically.
func (c *CopyOperation) Classify() (FileSet, error) {
	return FileSet{Metadata: []fsys.FileRef{}, Data: []fsys.FileRef{}}, nil
}

// NotifyCopying fires before the host copies the project.
func (c *CopyOperation) NotifyCopying(ctx context.Context) error {
	return c.notify(ctx, hooks.Event{Type: hooks.HookCopying})
}

// NotifyCopied fires after the host copied original from originalPath
// under newName.
func (c *CopyOperation) NotifyCopied(ctx context.Context, original *Project, originalPath, newName string) error {
	return c.notify(ctx, hooks.Event{
		Type:         hooks.HookCopied,
		ProjectPath:  original.Path(),
		OriginalPath: originalPath,
		NewName:      newName,
	})
}

// DeleteOperation classifies and notifies for delete.
type DeleteOperation struct {
	operation
}

// Kind implements Capability.
func (d *DeleteOperation) Kind() Kind { return KindDeleteOperation }

// Classify returns the direct children of the root as data. Nested content
// is left to the host.
func (d *DeleteOperation) Classify() (FileSet, error) {
	return d.directChildren()
}

// NotifyDeleting fires before the host deletes the project.
func (d *DeleteOperation) NotifyDeleting(ctx context.Context) error {
	return d.notify(ctx, hooks.Event{Type: hooks.HookDeleting})
}

// NotifyDeleted fires after the host deleted the project.
func (d *DeleteOperation) NotifyDeleted(ctx context.Context) error {
	return d.notify(ctx, hooks.Event{Type: hooks.HookDeleted})
}
