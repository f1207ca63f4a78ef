// Package output renders collection results: the ASCII selection tree, the
// concatenated prompt bundle, and the JSON document form.
package output

import (
	"strings"
)

// Connector glyphs used for tree rendering.
const (
	branchConnector       = "├── "
	cornerConnector       = "└── "
	verticalContinuation  = "│   "
	trailingSpacingFiller = "    "
)

// treeNode is the ephemeral hierarchy rebuilt from the flat selection purely
// for rendering; it is discarded once the text is produced.
type treeNode struct {
	name       string
	children   []*treeNode
	childIndex map[string]*treeNode
}

func newTreeNode(name string) *treeNode {
	return &treeNode{name: name, childIndex: make(map[string]*treeNode)}
}

func (node *treeNode) child(name string) *treeNode {
	if existingChild, found := node.childIndex[name]; found {
		return existingChild
	}
	createdChild := newTreeNode(name)
	node.childIndex[name] = createdChild
	node.children = append(node.children, createdChild)
	return createdChild
}

// RenderSelectionTree converts the ordered root-relative paths into an
// indented ASCII hierarchy. Each directory is listed once; the last child at
// any level is drawn with a corner connector while earlier children use a
// branch connector, with vertical continuation glyphs carried down for
// ancestors that still have following siblings. Entries appear in the same
// order as the selection, so the rendered tree matches the bundled file order
// exactly.
func RenderSelectionTree(relativePaths []string) string {
	rootNode := newTreeNode("")
	for _, relativePath := range relativePaths {
		currentNode := rootNode
		for _, pathSegment := range strings.Split(relativePath, "/") {
			if pathSegment == "" {
				continue
			}
			currentNode = currentNode.child(pathSegment)
		}
	}

	var renderedLines []string
	renderTreeLevel(rootNode.children, "", true, &renderedLines)
	return strings.Join(renderedLines, "\n")
}

// renderTreeLevel appends one line per node at this level. Top-level entries
// are printed bare; deeper entries carry their connector and the accumulated
// prefix of their ancestors.
func renderTreeLevel(nodes []*treeNode, prefix string, isTopLevel bool, renderedLines *[]string) {
	for nodeIndex, node := range nodes {
		isLastChild := nodeIndex == len(nodes)-1

		if isTopLevel {
			*renderedLines = append(*renderedLines, node.name)
		} else {
			connector := branchConnector
			if isLastChild {
				connector = cornerConnector
			}
			*renderedLines = append(*renderedLines, prefix+connector+node.name)
		}

		if len(node.children) > 0 {
			continuation := verticalContinuation
			if isLastChild {
				continuation = trailingSpacingFiller
			}
			renderTreeLevel(node.children, prefix+continuation, false, renderedLines)
		}
	}
}
