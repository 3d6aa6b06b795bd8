package project

import (
	"github.com/fyrsmithlabs/crxproject/internal/assets"
	"github.com/fyrsmithlabs/crxproject/internal/view"
)

// projectIcon is loaded once; it never depends on project state.
var projectIcon = assets.MustLoadIcon(assets.ProjectIcon)

// ChangeListener would be told about identity changes. Projects of this
// kind never change shape, so listeners are never called.
type ChangeListener func(p *Project)

// Information describes a project for display.
type Information struct {
	project *Project
}

// Kind implements Capability.
func (i *Information) Kind() Kind { return KindInformation }

// Project implements Capability.
func (i *Information) Project() *Project { return i.project }

// Name returns the current base name of the root directory.
func (i *Information) Name() string {
	return i.project.dir.Name()
}

// DisplayName equals Name and is read live on every call.
func (i *Information) DisplayName() string {
	return i.Name()
}

// Icon returns the bundled project icon.
func (i *Information) Icon() view.Icon {
	return projectIcon
}

// AddListener is a no-op; listeners never fire.
func (i *Information) AddListener(ChangeListener) {}

// RemoveListener is a no-op.
func (i *Information) RemoveListener(ChangeListener) {}
