package utils

import (
	"strings"

	"prdiff/internal/filechanges"

	"github.com/gosuri/uitable"
)

const maxColWidth = 80

// NodeTable renders nodes and their children, indented by depth.
func NodeTable(nodes []filechanges.Node) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.Wrap = true

	for _, n := range nodes {
		addItem(table, filechanges.Render(n), 0)
	}

	return table
}

func addItem(table *uitable.Table, item filechanges.Item, depth int) {
	icon := item.Icon
	if icon != "" {
		icon = "[" + icon + "]"
	}
	table.AddRow(strings.Repeat("  ", depth)+item.Label, icon, item.Detail)

	for _, c := range item.Children {
		addItem(table, c, depth+1)
	}
}

// FindFile returns the file change shown at path, searching directories.
// A renamed file is found by either of its paths.
func FindFile(nodes []filechanges.Node, path string) *filechanges.FileChange {
	for _, n := range nodes {
		switch n := n.(type) {
		case *filechanges.FileChange:
			if n.Path == path || (n.Args != nil && n.Args.Left != nil && n.Args.Left.Path == path) {
				return n
			}
		case *filechanges.Directory:
			if f := FindFile(n.Children, path); f != nil {
				return f
			}
		}
	}

	return nil
}
