package filechanges

import (
	"context"
	"testing"

	"prdiff/internal/diffview"
	"prdiff/internal/domain/pullrequest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticConfig bool

func (c staticConfig) NestFilesByDirectory() bool {
	return bool(c)
}

// panickyRepo panics on its first merge base lookup only.
type panickyRepo struct {
	calls int
}

func (r *panickyRepo) GetMergeBase(ctx context.Context, refA, refB string) (string, error) {
	r.calls++
	if r.calls == 1 {
		panic("corrupt repository")
	}
	return "base", nil
}

func (r *panickyRepo) RemoteName() string {
	return "origin"
}

func newPullRequest() *pullrequest.Entity {
	return &pullrequest.Entity{
		ID:          "1",
		Title:       "Add feature",
		URL:         "https://bitbucket.org/ws/repo/pull-requests/1",
		Source:      pullrequest.Branch{Name: "feature", CommitHash: "src"},
		Destination: pullrequest.Branch{Name: "main", CommitHash: "dst"},
	}
}

func modified(p string) *pullrequest.FileDiff {
	return &pullrequest.FileDiff{Status: pullrequest.FileStatusModified, OldPath: p, NewPath: p}
}

func fileNames(t *testing.T, nodes []Node) []string {
	names := []string{}
	for _, n := range nodes {
		fc, ok := n.(*FileChange)
		require.True(t, ok, "expected a file change, got %T", n)
		names = append(names, fc.Args.FileDisplayName)
	}
	return names
}

func TestBuilder_CreateFileChangesNodes(t *testing.T) {
	ctx := context.Background()

	t.Run("flat list in input order", func(t *testing.T) {
		b := NewBuilder(staticConfig(false), nil)
		nodes := b.CreateFileChangesNodes(ctx, newPullRequest(), nil, []*pullrequest.FileDiff{
			modified("z.go"),
			modified("a/b.go"),
		}, nil, nil)

		assert.Equal(t, []string{"z.go", "a/b.go"}, fileNames(t, nodes))
	})

	t.Run("pagination warning is the last node", func(t *testing.T) {
		b := NewBuilder(staticConfig(false), nil)
		nodes := b.CreateFileChangesNodes(ctx, newPullRequest(), &pullrequest.PaginatedComments{
			Next: "https://api.bitbucket.org/2.0/next",
		}, []*pullrequest.FileDiff{modified("a.go")}, nil, nil)

		require.Len(t, nodes, 2)
		w, ok := nodes[1].(*Warning)
		require.True(t, ok)
		assert.Equal(t, "⚠️ All file comments are not shown. This PR has more comments than what is supported.", w.Label)
	})

	t.Run("conflicted files are marked by old or new path", func(t *testing.T) {
		b := NewBuilder(staticConfig(false), nil)
		nodes := b.CreateFileChangesNodes(ctx, newPullRequest(), nil, []*pullrequest.FileDiff{
			{Status: pullrequest.FileStatusRenamed, OldPath: "old.go", NewPath: "new.go"},
			modified("clean.go"),
		}, []string{"old.go"}, nil)

		assert.Equal(t, []string{
			diffview.ConflictMarker + "old.go → new.go",
			"clean.go",
		}, fileNames(t, nodes))
	})

	t.Run("tasks travel with their comments", func(t *testing.T) {
		comment := &pullrequest.Comment{
			ID:     "c1",
			Inline: &pullrequest.Inline{Path: "a.go", To: pullrequest.Int(3)},
		}
		b := NewBuilder(staticConfig(false), nil)
		nodes := b.CreateFileChangesNodes(ctx, newPullRequest(), &pullrequest.PaginatedComments{
			Data: []*pullrequest.Comment{comment},
		}, []*pullrequest.FileDiff{modified("a.go")}, nil, []*pullrequest.Task{
			{ID: "t1", CommentID: "c1", Content: "fix it"},
		})

		require.Len(t, nodes, 1)
		fc := nodes[0].(*FileChange)
		assert.Equal(t, 1, fc.Args.NumberOfComments)
		require.Len(t, fc.Args.Right.CommentThreads, 1)
		root := fc.Args.Right.CommentThreads[0].Root()
		require.Len(t, root.Tasks, 1)
		assert.Equal(t, "fix it", root.Tasks[0].Content)
		assert.Empty(t, comment.Tasks, "the fetched comments are not modified")
	})

	t.Run("a failing file does not blank the list", func(t *testing.T) {
		pr := newPullRequest()
		pr.LocalRepo = &panickyRepo{}

		b := NewBuilder(staticConfig(false), nil)
		nodes := b.CreateFileChangesNodes(ctx, pr, nil, []*pullrequest.FileDiff{
			modified("bad.go"),
			modified("good.go"),
		}, nil, nil)

		require.Len(t, nodes, 2)
		w, ok := nodes[0].(*Warning)
		require.True(t, ok)
		assert.Equal(t, "Unable to show bad.go", w.Label)

		fc, ok := nodes[1].(*FileChange)
		require.True(t, ok)
		assert.Equal(t, "base", fc.Args.Left.CommitHash)
	})

	t.Run("nested by directory", func(t *testing.T) {
		b := NewBuilder(staticConfig(true), nil)
		nodes := b.CreateFileChangesNodes(ctx, newPullRequest(), &pullrequest.PaginatedComments{Next: "more"}, []*pullrequest.FileDiff{
			modified("src/pkg/deep/a.go"),
			modified("README.md"),
			modified("src/pkg/deep/b.go"),
			modified("src/main.go"),
			{Status: pullrequest.FileStatusDeleted, OldPath: "docs/guide/old.md"},
		}, nil, nil)

		require.Len(t, nodes, 4)

		src, ok := nodes[0].(*Directory)
		require.True(t, ok)
		assert.Equal(t, "src", src.Name)
		require.Len(t, src.Children, 2)

		deep, ok := src.Children[0].(*Directory)
		require.True(t, ok)
		assert.Equal(t, "pkg/deep", deep.Name)
		assert.Equal(t, []string{"src/pkg/deep/a.go", "src/pkg/deep/b.go"}, fileNames(t, deep.Children))
		assert.Equal(t, []string{"src/main.go"}, fileNames(t, src.Children[1:]))

		assert.Equal(t, []string{"README.md"}, fileNames(t, nodes[1:2]))

		docs, ok := nodes[2].(*Directory)
		require.True(t, ok)
		assert.Equal(t, "docs/guide", docs.Name)
		assert.Equal(t, []string{"docs/guide/old.md"}, fileNames(t, docs.Children))

		_, ok = nodes[3].(*Warning)
		assert.True(t, ok)
	})
}

func TestRender(t *testing.T) {
	t.Run("file change", func(t *testing.T) {
		item := Render(&FileChange{Path: "a.go", Args: &diffview.DiffViewArgs{
			FileDisplayName:  "a.go",
			FileDiffStatus:   pullrequest.FileStatusAdded,
			NumberOfComments: 2,
		}})
		assert.Equal(t, "a.go", item.Label)
		assert.Equal(t, "2 comments", item.Detail)
		assert.Equal(t, "A", item.Icon)
	})

	t.Run("commit placeholder and loaded list", func(t *testing.T) {
		assert.Equal(t, "Loading...", Render(&CommitSection{}).Detail)

		item := Render(&CommitSection{Loaded: true, Commits: []*pullrequest.Commit{
			{Hash: "0123456789", Message: "first line\nbody", Author: "Ann"},
		}})
		require.Len(t, item.Children, 1)
		assert.Equal(t, "first line", item.Children[0].Label)
		assert.Equal(t, "0123456 Ann", item.Children[0].Detail)
	})

	t.Run("directories render their children", func(t *testing.T) {
		item := Render(&Directory{Name: "src", Children: []Node{&Warning{Label: "w"}}})
		assert.Equal(t, "src", item.Label)
		require.Len(t, item.Children, 1)
		assert.Equal(t, "w", item.Children[0].Label)
	})

	t.Run("related issues", func(t *testing.T) {
		item := Render(&RelatedIssues{Kind: IssueKindBitbucket, Keys: []string{"#1"}})
		assert.Equal(t, "Related Bitbucket issues", item.Label)
		assert.Equal(t, "#1", item.Children[0].Label)
	})
}
