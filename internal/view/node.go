// Package view models the host's generic tree nodes and renders them.
//
// Nodes are read-only views over a filesystem; decorators wrap a node to
// change how it is presented without taking ownership of it.
package view

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
)

// ErrNodeUnavailable indicates the host could not materialize a node.
var ErrNodeUnavailable = errors.New("node unavailable")

// Icon references a bundled image.
type Icon struct {
	Resource string
	Data     []byte
}

// IsZero reports whether the icon is unset.
func (i Icon) IsZero() bool {
	return i.Resource == "" && len(i.Data) == 0
}

// Action identifies a host-provided action a node offers.
type Action string

// Actions offered by project nodes. Execution belongs to the host.
const (
	ActionNewFile Action = "new-file"
	ActionRename  Action = "rename"
	ActionMove    Action = "move"
	ActionCopy    Action = "copy"
	ActionDelete  Action = "delete"
	ActionClose   Action = "close"
)

// Node is a single entry in a tree view.
type Node interface {
	// Name is the programmatic name, usually the file name.
	Name() string
	// Path is the filesystem location backing the node, if any.
	Path() string
	DisplayName() string
	Icon() Icon
	OpenedIcon() Icon
	Actions() []Action
	IsLeaf() bool
	// Children lists child nodes; leaves return nil.
	Children() ([]Node, error)
}

// NodeFactory builds the generic node for a directory.
type NodeFactory interface {
	NodeFor(dir *fsys.Dir) (Node, error)
}

// DirNodeFactory is the default NodeFactory over fsys directories.
type DirNodeFactory struct{}

// NodeFor returns a DirNode for dir, or ErrNodeUnavailable when the
// directory no longer exists.
func (DirNodeFactory) NodeFor(dir *fsys.Dir) (Node, error) {
	if dir == nil {
		return nil, fmt.Errorf("%w: %v", ErrNodeUnavailable, fsys.ErrNilDir)
	}
	if !dir.Exists() {
		return nil, fmt.Errorf("%w: %s does not exist", ErrNodeUnavailable, dir.Path())
	}
	return &DirNode{dir: dir}, nil
}

// folderIcon marks generic directory nodes.
var folderIcon = Icon{Resource: "folder"}

// fileIcon marks generic file nodes.
var fileIcon = Icon{Resource: "file"}

// DirNode is the generic node for a directory.
type DirNode struct {
	dir *fsys.Dir
}

func (n *DirNode) Name() string        { return n.dir.Name() }
func (n *DirNode) Path() string        { return n.dir.Path() }
func (n *DirNode) DisplayName() string { return n.dir.Name() }
func (n *DirNode) Icon() Icon          { return folderIcon }
func (n *DirNode) OpenedIcon() Icon    { return folderIcon }
func (n *DirNode) Actions() []Action   { return nil }
func (n *DirNode) IsLeaf() bool        { return false }

// Children lists the directory's entries as nodes, sorted by name.
func (n *DirNode) Children() ([]Node, error) {
	refs, err := n.dir.Children()
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(refs))
	for _, ref := range refs {
		if ref.IsDir {
			sub, err := n.dir.Sub(ref.Name)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &DirNode{dir: sub})
			continue
		}
		nodes = append(nodes, &FileNode{ref: ref})
	}
	return nodes, nil
}

// FileNode is the generic node for a regular file.
type FileNode struct {
	ref fsys.FileRef
}

func (n *FileNode) Name() string              { return n.ref.Name }
func (n *FileNode) Path() string              { return n.ref.Path }
func (n *FileNode) DisplayName() string       { return n.ref.Name }
func (n *FileNode) Icon() Icon                { return fileIcon }
func (n *FileNode) OpenedIcon() Icon          { return fileIcon }
func (n *FileNode) Actions() []Action         { return nil }
func (n *FileNode) IsLeaf() bool              { return true }
func (n *FileNode) Children() ([]Node, error) { return nil, nil }

// leafNode is an empty placeholder.
type leafNode struct{}

// EmptyLeaf returns a node with no name, icon, actions or children. It
// stands in for nodes the host failed to build so trees stay renderable.
func EmptyLeaf() Node {
	return leafNode{}
}

func (leafNode) Name() string              { return "" }
func (leafNode) Path() string              { return "" }
func (leafNode) DisplayName() string       { return "" }
func (leafNode) Icon() Icon                { return Icon{} }
func (leafNode) OpenedIcon() Icon          { return Icon{} }
func (leafNode) Actions() []Action         { return nil }
func (leafNode) IsLeaf() bool              { return true }
func (leafNode) Children() ([]Node, error) { return nil, nil }
