package utils

import (
	"context"
	"errors"
	"testing"

	"prdiff/internal/diffview"
	"prdiff/internal/domain/pullrequest"
	"prdiff/internal/errcodes"
	"prdiff/internal/filechanges"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPullRequestArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		rest     int
		wantRepo string
		wantID   string
		wantTail []string
	}{
		{name: "id only", args: []string{"7"}, wantID: "7", wantTail: []string{}},
		{name: "repo and id", args: []string{"ws/repo", "7"}, wantRepo: "ws/repo", wantID: "7", wantTail: []string{}},
		{name: "id and path", args: []string{"7", "a.go"}, rest: 1, wantID: "7", wantTail: []string{"a.go"}},
		{name: "repo id and path", args: []string{"ws/repo", "7", "a.go"}, rest: 1, wantRepo: "ws/repo", wantID: "7", wantTail: []string{"a.go"}},
		{name: "nothing", args: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, id, tail := SplitPullRequestArgs(tt.args, tt.rest)
			assert.Equal(t, tt.wantRepo, repo)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantTail, tail)
		})
	}
}

func TestSession_PullRequest(t *testing.T) {
	repo := &pullrequest.Repo{Workspace: "ws", Slug: "repo"}

	t.Run("attaches the local checkout", func(t *testing.T) {
		client := &MockClient{MockRepository: &pullrequest.MockRepository{}, PullRequest: &pullrequest.Entity{ID: "7"}}
		s := NewTestSession(client)
		local := &pullrequest.MockLocalRepo{Remote: "origin"}
		s.OpenLocal = func(dir, remote string) (pullrequest.LocalRepo, error) {
			assert.Equal(t, "/work/repo", dir)
			assert.Equal(t, "origin", remote)
			return local, nil
		}

		pr, err := s.PullRequest(context.Background(), repo, "7")
		require.NoError(t, err)
		assert.Same(t, local, pr.LocalRepo)
		assert.Equal(t, []string{"ws/repo#7"}, client.Requested)
	})

	t.Run("no local checkout", func(t *testing.T) {
		client := &MockClient{MockRepository: &pullrequest.MockRepository{}, PullRequest: &pullrequest.Entity{ID: "7"}}
		pr, err := NewTestSession(client).PullRequest(context.Background(), repo, "7")
		require.NoError(t, err)
		assert.Nil(t, pr.LocalRepo)
	})

	t.Run("missing id", func(t *testing.T) {
		client := &MockClient{MockRepository: &pullrequest.MockRepository{}}
		_, err := NewTestSession(client).PullRequest(context.Background(), repo, "")
		assert.ErrorIs(t, err, errcodes.ErrMissingPullRequestID)
	})

	t.Run("remote error", func(t *testing.T) {
		client := &MockClient{MockRepository: &pullrequest.MockRepository{}, PullRequestErr: errors.New("404")}
		_, err := NewTestSession(client).PullRequest(context.Background(), repo, "7")
		assert.ErrorContains(t, err, "cannot get pull request 7 of ws/repo")
	})
}

func TestNodeTable(t *testing.T) {
	nodes := []filechanges.Node{
		&filechanges.Directory{Name: "src", Children: []filechanges.Node{
			&filechanges.FileChange{Path: "src/a.go", Args: &diffview.DiffViewArgs{
				FileDisplayName:  "a.go",
				FileDiffStatus:   pullrequest.FileStatusModified,
				NumberOfComments: 2,
			}},
		}},
		&filechanges.Warning{Label: "careful"},
	}

	out := NodeTable(nodes).String()
	assert.Contains(t, out, "src")
	assert.Contains(t, out, "  a.go")
	assert.Contains(t, out, "[M]")
	assert.Contains(t, out, "2 comments")
	assert.Contains(t, out, "careful")

	t.Run("FindFile searches directories", func(t *testing.T) {
		f := FindFile(nodes, "src/a.go")
		require.NotNil(t, f)
		assert.Equal(t, "a.go", f.Args.FileDisplayName)
		assert.Nil(t, FindFile(nodes, "b.go"))
	})

	t.Run("FindFile matches the old path of a rename", func(t *testing.T) {
		renamed := []filechanges.Node{&filechanges.FileChange{Path: "new.go", Args: &diffview.DiffViewArgs{
			Left:  &diffview.Locator{Path: "old.go", LHS: true},
			Right: &diffview.Locator{Path: "new.go"},
		}}}
		require.NotNil(t, FindFile(renamed, "old.go"))
		require.NotNil(t, FindFile(renamed, "new.go"))
		assert.Nil(t, FindFile(renamed, "other.go"))
	})
}
