package commentctl

import (
	"time"

	"prdiff/internal/domain/pullrequest"
)

// Range is a zero based, inclusive line range of a document.
type Range struct {
	StartLine int
	EndLine   int
}

// DisplayComment is what a host renders for one comment or task.
type DisplayComment struct {
	ID      string
	Author  string
	Body    string
	Created time.Time
	Deleted bool

	IsTask     bool
	IsComplete bool
	// CommentID is the owning comment of a task.
	CommentID string
}

// ThreadHandle is a live thread owned by the host.
type ThreadHandle interface {
	Dispose()
	SetComments(comments []DisplayComment)
	SetCollapsed(collapsed bool)
}

// ThreadRenderer creates threads on the document identified by uri.
type ThreadRenderer interface {
	CreateThread(uri string, r Range, comments []DisplayComment) ThreadHandle
}

func anchorRange(c *pullrequest.Comment) Range {
	line := 0
	if c != nil && c.Inline != nil {
		if c.Inline.From != nil {
			line = *c.Inline.From - 1
		} else if c.Inline.To != nil {
			line = *c.Inline.To - 1
		}
	}
	if line < 0 {
		line = 0
	}

	return Range{StartLine: line, EndLine: line}
}

// displayComments lists every comment followed by its tasks.
func displayComments(comments []*pullrequest.Comment) []DisplayComment {
	result := make([]DisplayComment, 0, len(comments))
	for _, c := range comments {
		result = append(result, DisplayComment{
			ID:      c.ID,
			Author:  c.User,
			Body:    c.Content,
			Created: c.Created,
			Deleted: c.Deleted,
		})

		for _, t := range c.Tasks {
			result = append(result, DisplayComment{
				ID:         t.ID,
				Author:     t.Creator,
				Body:       t.Content,
				Created:    t.Created,
				IsTask:     true,
				IsComplete: t.IsComplete,
				CommentID:  c.ID,
			})
		}
	}

	return result
}
