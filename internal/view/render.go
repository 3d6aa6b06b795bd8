package view

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

var (
	rootStyle = lipgloss.NewStyle().Bold(true)
	dirStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Render draws node and its descendants down to maxDepth levels
// (0 renders only the root). Leaf placeholders render as "(empty)".
func Render(node Node, maxDepth int) (string, error) {
	t := tree.Root(label(node)).RootStyle(rootStyle)
	if err := addChildren(t, node, 0, maxDepth); err != nil {
		return "", err
	}
	return t.String(), nil
}

func addChildren(t *tree.Tree, node Node, depth, maxDepth int) error {
	if node.IsLeaf() || depth >= maxDepth {
		return nil
	}

	children, err := node.Children()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", node.Path(), err)
	}

	for _, child := range children {
		if child.IsLeaf() {
			t.Child(label(child))
			continue
		}
		sub := tree.Root(dirStyle.Render(label(child)))
		if err := addChildren(sub, child, depth+1, maxDepth); err != nil {
			return err
		}
		t.Child(sub)
	}
	return nil
}

func label(node Node) string {
	if name := node.DisplayName(); name != "" {
		return name
	}
	return "(empty)"
}
