package comments

import (
	"bytes"
	"context"
	"testing"

	"prdiff/internal/cli/utils"
	"prdiff/internal/domain/pullrequest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient() *utils.MockClient {
	return &utils.MockClient{
		MockRepository: &pullrequest.MockRepository{
			ChangedFiles: []*pullrequest.FileDiff{
				{Status: pullrequest.FileStatusModified, OldPath: "a.go", NewPath: "a.go"},
			},
			Comments: &pullrequest.PaginatedComments{Data: []*pullrequest.Comment{
				{
					ID:      "10",
					Content: "why?",
					User:    "ann",
					Inline:  &pullrequest.Inline{Path: "a.go", To: pullrequest.Int(3)},
					Children: []*pullrequest.Comment{
						{ID: "11", ParentID: "10", Content: "because", User: "bob"},
					},
				},
				{
					ID:      "20",
					Content: "removed line",
					User:    "cy",
					Inline:  &pullrequest.Inline{Path: "a.go", From: pullrequest.Int(8)},
				},
			}},
			Tasks: []*pullrequest.Task{{ID: "t1", CommentID: "11", Content: "rename it"}},
		},
		PullRequest: &pullrequest.Entity{
			ID:  "7",
			URL: "https://bitbucket.org/ws/repo/pull-requests/7",
		},
	}
}

func Test_executeList(t *testing.T) {
	t.Run("prints both sides", func(t *testing.T) {
		out := &bytes.Buffer{}
		s := utils.NewTestSession(newClient())

		err := executeList(context.Background(), out, s, "ws/repo", "7", "a.go")
		require.NoError(t, err)

		text := out.String()
		assert.Contains(t, text, "why?")
		assert.Contains(t, text, "because")
		assert.Contains(t, text, "[ ] rename it")
		assert.Contains(t, text, "removed line")
		assert.Contains(t, text, "old")
		assert.Contains(t, text, "new")
		assert.Empty(t, s.Threads.Live(), "threads are disposed once printed")
		for _, th := range s.Threads.All() {
			assert.Equal(t, 1, th.Disposals)
		}
	})

	t.Run("renamed file by its old path", func(t *testing.T) {
		client := newClient()
		client.ChangedFiles = []*pullrequest.FileDiff{
			{Status: pullrequest.FileStatusRenamed, OldPath: "old.go", NewPath: "new.go"},
		}
		client.Comments = &pullrequest.PaginatedComments{Data: []*pullrequest.Comment{
			{ID: "40", Content: "was here", User: "ann", Inline: &pullrequest.Inline{Path: "old.go", From: pullrequest.Int(2)}},
		}}
		client.Tasks = nil
		out := &bytes.Buffer{}

		err := executeList(context.Background(), out, utils.NewTestSession(client), "ws/repo", "7", "old.go")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "old.go → new.go")
		assert.Contains(t, out.String(), "was here")
	})

	t.Run("unknown file", func(t *testing.T) {
		err := executeList(context.Background(), &bytes.Buffer{}, utils.NewTestSession(newClient()), "ws/repo", "7", "b.go")
		assert.ErrorIs(t, err, ErrFileNotChanged)
	})
}

func Test_executePost(t *testing.T) {
	t.Run("starts a thread on the new side", func(t *testing.T) {
		client := newClient()
		var posted *pullrequest.PostCommentOptions
		client.PostCommentFn = func(o *pullrequest.PostCommentOptions) (*pullrequest.Comment, error) {
			posted = o
			return &pullrequest.Comment{ID: "30", Content: o.Content, User: "me", Inline: o.Inline}, nil
		}
		out := &bytes.Buffer{}

		err := executePost(context.Background(), out, utils.NewTestSession(client), "ws/repo", "7", &postParams{
			Path:    "a.go",
			Line:    5,
			Content: "nit",
		})
		require.NoError(t, err)

		require.NotNil(t, posted.Inline)
		assert.Equal(t, 5, *posted.Inline.To)
		assert.Nil(t, posted.Inline.From)
		assert.Contains(t, out.String(), "Posted comment 30")
		assert.Contains(t, out.String(), "nit")
	})

	t.Run("replies to an existing thread", func(t *testing.T) {
		client := newClient()
		client.PostCommentFn = func(o *pullrequest.PostCommentOptions) (*pullrequest.Comment, error) {
			assert.Equal(t, "10", o.ParentID)
			assert.Nil(t, o.Inline)
			return &pullrequest.Comment{ID: "31", ParentID: o.ParentID, Content: o.Content, User: "me"}, nil
		}
		out := &bytes.Buffer{}

		err := executePost(context.Background(), out, utils.NewTestSession(client), "ws/repo", "7", &postParams{
			Path:     "a.go",
			ThreadID: "10",
			Content:  "agreed",
		})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "agreed")
		assert.Equal(t, 1, client.CallCount("PostComment"))
	})

	t.Run("empty content", func(t *testing.T) {
		client := newClient()
		err := executePost(context.Background(), &bytes.Buffer{}, utils.NewTestSession(client), "ws/repo", "7", &postParams{Path: "a.go", Content: "  "})
		assert.Error(t, err)
		assert.Equal(t, 0, client.CallCount("GetChangedFiles"))
	})
}
