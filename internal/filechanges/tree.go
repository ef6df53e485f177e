package filechanges

import (
	"path"
	"strings"
)

type entry struct {
	path string
	node Node
}

type treeNode struct {
	name     string
	children []*treeNode
	file     Node
}

func (n *treeNode) isDir() bool {
	return n.file == nil
}

func findDir(input []*treeNode, name string) *treeNode {
	for _, n := range input {
		if n.isDir() && n.name == name {
			return n
		}
	}
	return nil
}

// nestByDirectory groups file nodes into directories following their path
// segments. Files keep their input order inside a directory and a
// directory whose only child is another directory is merged with it.
func nestByDirectory(entries []entry) []Node {
	root := &treeNode{}

	for _, e := range entries {
		segments := strings.Split(e.path, "/")
		current := root
		for _, v := range segments[:len(segments)-1] {
			if v == "" {
				continue
			}

			child := findDir(current.children, v)
			if child == nil {
				child = &treeNode{name: v}
				current.children = append(current.children, child)
			}

			current = child
		}

		current.children = append(current.children, &treeNode{name: segments[len(segments)-1], file: e.node})
	}

	collapse := func(node *treeNode) {
		for len(node.children) == 1 && node.children[0].isDir() {
			node.name = path.Join(node.name, node.children[0].name)
			node.children = node.children[0].children
		}
	}

	var toNodes func(nodes []*treeNode) []Node
	toNodes = func(nodes []*treeNode) []Node {
		result := make([]Node, 0, len(nodes))
		for _, n := range nodes {
			if !n.isDir() {
				result = append(result, n.file)
				continue
			}

			collapse(n)
			result = append(result, &Directory{Name: n.name, Children: toNodes(n.children)})
		}
		return result
	}

	return toNodes(root.children)
}
