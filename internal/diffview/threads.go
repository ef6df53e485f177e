package diffview

import (
	"prdiff/internal/domain/pullrequest"

	"golang.org/x/exp/slices"
)

// Thread is a root comment followed by all of its replies, depth first.
type Thread []*pullrequest.Comment

// Root returns the comment the thread is anchored by.
func (t Thread) Root() *pullrequest.Comment {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// IsLeftSide reports whether the thread is anchored on the old side of the
// diff. Only the root's anchor is considered.
func (t Thread) IsLeftSide() bool {
	root := t.Root()
	return root != nil && root.Inline != nil && root.Inline.From != nil
}

// ThreadIndex groups threads by file path, keeping the order in which
// paths were first seen.
type ThreadIndex struct {
	paths   []string
	threads map[string][]Thread
}

// Get returns the threads anchored to path.
func (ti *ThreadIndex) Get(path string) []Thread {
	return ti.threads[path]
}

// Paths returns the indexed paths in insertion order.
func (ti *ThreadIndex) Paths() []string {
	return ti.paths
}

func (ti *ThreadIndex) Len() int {
	return len(ti.paths)
}

func (ti *ThreadIndex) add(path string, t Thread) {
	if _, ok := ti.threads[path]; !ok {
		ti.paths = append(ti.paths, path)
	}
	ti.threads[path] = append(ti.threads[path], t)
}

func flatten(c *pullrequest.Comment) Thread {
	t := Thread{c}
	for _, child := range c.Children {
		t = append(t, flatten(child)...)
	}
	return t
}

// BuildThreadsByFile flattens every inline root comment into a thread and
// groups the threads by the root's file path.
func BuildThreadsByFile(comments []*pullrequest.Comment) *ThreadIndex {
	ti := &ThreadIndex{threads: make(map[string][]Thread)}
	for _, c := range comments {
		if c == nil || c.Inline == nil || c.Inline.Path == "" {
			continue
		}

		ti.add(c.Inline.Path, flatten(c))
	}

	return ti
}

// CloneComments copies the comment trees so tasks can be attached without
// touching comments that were already handed out. Inline anchors are shared.
func CloneComments(comments []*pullrequest.Comment) []*pullrequest.Comment {
	if comments == nil {
		return nil
	}

	result := make([]*pullrequest.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			result = append(result, nil)
			continue
		}
		cp := *c
		cp.Tasks = slices.Clone(c.Tasks)
		cp.Children = CloneComments(c.Children)
		result = append(result, &cp)
	}

	return result
}

// AttachTasks appends each task to the comment it belongs to, searching the
// whole comment tree. Tasks without an owning comment are returned.
func AttachTasks(comments []*pullrequest.Comment, tasks []*pullrequest.Task) []*pullrequest.Task {
	byID := make(map[string]*pullrequest.Comment)
	var walk func(cs []*pullrequest.Comment)
	walk = func(cs []*pullrequest.Comment) {
		for _, c := range cs {
			if c == nil {
				continue
			}
			byID[c.ID] = c
			walk(c.Children)
		}
	}
	walk(comments)

	orphans := []*pullrequest.Task{}
	for _, t := range tasks {
		c, ok := byID[t.CommentID]
		if t.CommentID == "" || !ok {
			orphans = append(orphans, t)
			continue
		}

		if hasTask(c, t.ID) {
			continue
		}
		c.Tasks = append(c.Tasks, t)
	}

	return orphans
}

func hasTask(c *pullrequest.Comment, id string) bool {
	for _, t := range c.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
