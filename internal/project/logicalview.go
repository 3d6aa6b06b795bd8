package project

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/view"
)

// projectActions is the fixed, ordered action list of a project node.
var projectActions = []view.Action{
	view.ActionNewFile,
	view.ActionRename,
	view.ActionMove,
	view.ActionCopy,
	view.ActionDelete,
	view.ActionClose,
}

// LogicalView decorates the host's node for the project root.
type LogicalView struct {
	project *Project
}

// Kind implements Capability.
func (v *LogicalView) Kind() Kind { return KindViewDecorator }

// Project implements Capability.
func (v *LogicalView) Project() *Project { return v.project }

// CreateView wraps the host node for the root directory. If the host
// cannot build that node the failure is logged and an empty leaf is
// returned instead.
func (v *LogicalView) CreateView(ctx context.Context) view.Node {
	base, err := v.project.factory.nodes.NodeFor(v.project.dir)
	if err != nil {
		v.project.Logger().Error(ctx, "failed to create project node",
			zap.String("path", v.project.Path()),
			zap.Error(err),
		)
		return view.EmptyLeaf()
	}
	return &projectNode{Node: base, info: v.project.Information()}
}

// FindPath is not supported. It always returns nil, which callers must read
// as "unsupported" rather than "not found".
func (v *LogicalView) FindPath(_ view.Node, _ string) view.Node {
	return nil
}

// projectNode overrides presentation and delegates structure to the base
// node, which it does not own.
type projectNode struct {
	view.Node
	info *Information
}

func (n *projectNode) DisplayName() string    { return n.info.DisplayName() }
func (n *projectNode) Icon() view.Icon        { return n.info.Icon() }
func (n *projectNode) OpenedIcon() view.Icon  { return n.info.Icon() }
func (n *projectNode) Actions() []view.Action { return append([]view.Action(nil), projectActions...) }
