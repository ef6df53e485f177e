package filechanges

import (
	"fmt"
	"strings"

	"prdiff/internal/domain/pullrequest"
)

// Item is the host facing rendition of a node.
type Item struct {
	Label    string
	Detail   string
	Icon     string
	Children []Item
	// Node is nil for the rows of a section.
	Node Node
}

var statusIcons = map[pullrequest.FileStatus]string{
	pullrequest.FileStatusAdded:    "A",
	pullrequest.FileStatusDeleted:  "D",
	pullrequest.FileStatusModified: "M",
	pullrequest.FileStatusRenamed:  "R",
	pullrequest.FileStatusCopied:   "C",
	pullrequest.FileStatusConflict: "!",
	pullrequest.FileStatusUnknown:  "?",
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// Render turns a node into its label, detail and icon.
func Render(n Node) Item {
	switch n := n.(type) {
	case *Description:
		return Item{
			Label:  "Details",
			Detail: n.PullRequest.Title,
			Icon:   "info",
			Node:   n,
		}
	case *CommitSection:
		if !n.Loaded {
			return Item{Label: "Commits", Detail: "Loading...", Icon: "commits", Node: n}
		}
		children := make([]Item, 0, len(n.Commits))
		for _, c := range n.Commits {
			children = append(children, Item{
				Label:  firstLine(c.Message),
				Detail: fmt.Sprintf("%.7s %s", c.Hash, c.Author),
				Icon:   "commit",
			})
		}
		return Item{
			Label:    "Commits",
			Detail:   fmt.Sprintf("%d", len(n.Commits)),
			Icon:     "commits",
			Children: children,
			Node:     n,
		}
	case *FileChange:
		detail := ""
		if n.Args.NumberOfComments > 0 {
			detail = fmt.Sprintf("%d comments", n.Args.NumberOfComments)
		}
		return Item{
			Label:  n.Args.FileDisplayName,
			Detail: detail,
			Icon:   statusIcons[n.Args.FileDiffStatus],
			Node:   n,
		}
	case *Directory:
		children := make([]Item, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, Render(c))
		}
		return Item{Label: n.Name, Icon: "folder", Children: children, Node: n}
	case *Warning:
		return Item{Label: n.Label, Icon: "warning", Node: n}
	case *RelatedIssues:
		label := "Related Jira issues"
		if n.Kind == IssueKindBitbucket {
			label = "Related Bitbucket issues"
		}
		children := make([]Item, 0, len(n.Keys))
		for _, k := range n.Keys {
			children = append(children, Item{Label: k, Icon: "issue"})
		}
		return Item{Label: label, Icon: "issues", Children: children, Node: n}
	case *Loading:
		return Item{Label: "Loading...", Icon: "loading", Node: n}
	case *Error:
		return Item{Label: fmt.Sprintf("Error: %v", n.Err), Icon: "error", Node: n}
	}

	return Item{Label: fmt.Sprintf("%T", n)}
}
