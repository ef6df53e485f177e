package bitbucket

import (
	"strings"

	"prdiff/internal/domain/pullrequest"

	"github.com/tidwall/gjson"
)

func optionalInt(v gjson.Result) *int {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	return pullrequest.Int(int(v.Int()))
}

func parseRepo(v gjson.Result) pullrequest.Repo {
	full := v.Get("repository.full_name").String()
	repo := pullrequest.Repo{URL: v.Get("repository.links.html.href").String()}
	repo.Workspace, repo.Slug, _ = strings.Cut(full, "/")
	return repo
}

func parseBranch(v gjson.Result) pullrequest.Branch {
	return pullrequest.Branch{
		Name:       v.Get("branch.name").String(),
		CommitHash: v.Get("commit.hash").String(),
		Repo:       parseRepo(v),
	}
}

func parsePullRequest(v gjson.Result) *pullrequest.Entity {
	return &pullrequest.Entity{
		ID:          pullrequest.EntityID(v.Get("id").String()),
		Title:       v.Get("title").String(),
		Description: v.Get("description").String(),
		URL:         v.Get("links.html.href").String(),
		State:       pullrequest.State(v.Get("state").String()),
		Source:      parseBranch(v.Get("source")),
		Destination: parseBranch(v.Get("destination")),
		Created:     v.Get("created_on").Time(),
		Updated:     v.Get("updated_on").Time(),
	}
}

func parseDiffstat(v gjson.Result) (*pullrequest.FileDiff, error) {
	return &pullrequest.FileDiff{
		Status:       pullrequest.ParseFileStatus(v.Get("status").String()),
		OldPath:      v.Get("old.path").String(),
		NewPath:      v.Get("new.path").String(),
		LinesAdded:   int(v.Get("lines_added").Int()),
		LinesRemoved: int(v.Get("lines_removed").Int()),
	}, nil
}

func parseComment(v gjson.Result) (*pullrequest.Comment, error) {
	c := &pullrequest.Comment{
		ID:       v.Get("id").String(),
		ParentID: v.Get("parent.id").String(),
		Content:  v.Get("content.raw").String(),
		User:     v.Get("user.display_name").String(),
		Created:  v.Get("created_on").Time(),
		Updated:  v.Get("updated_on").Time(),
		Deleted:  v.Get("deleted").Bool(),
	}

	if inline := v.Get("inline"); inline.Exists() && inline.Type != gjson.Null {
		c.Inline = &pullrequest.Inline{
			Path: inline.Get("path").String(),
			From: optionalInt(inline.Get("from")),
			To:   optionalInt(inline.Get("to")),
		}
		// anchors are exclusive, the old side wins
		if c.Inline.From != nil && c.Inline.To != nil {
			c.Inline.To = nil
		}
	}

	return c, nil
}

func parseTask(v gjson.Result) (*pullrequest.Task, error) {
	return &pullrequest.Task{
		ID:         v.Get("id").String(),
		CommentID:  v.Get("comment.id").String(),
		Content:    v.Get("content.raw").String(),
		IsComplete: v.Get("state").String() == taskStateResolved,
		Creator:    v.Get("creator.display_name").String(),
		Created:    v.Get("created_on").Time(),
	}, nil
}

func parseCommit(v gjson.Result) (*pullrequest.Commit, error) {
	return &pullrequest.Commit{
		Hash:    v.Get("hash").String(),
		Message: v.Get("message").String(),
		Author:  v.Get("author.raw").String(),
		Date:    v.Get("date").Time(),
	}, nil
}

// nestComments turns Bitbucket's flat comment list into trees. Deleted
// comments are kept only when replies hang off them.
func nestComments(flat []*pullrequest.Comment) []*pullrequest.Comment {
	byID := make(map[string]*pullrequest.Comment, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	roots := []*pullrequest.Comment{}
	for _, c := range flat {
		parent, ok := byID[c.ParentID]
		if c.ParentID == "" || !ok {
			roots = append(roots, c)
			continue
		}
		parent.Children = append(parent.Children, c)
	}

	return pruneDeleted(roots)
}

func pruneDeleted(comments []*pullrequest.Comment) []*pullrequest.Comment {
	kept := []*pullrequest.Comment{}
	for _, c := range comments {
		c.Children = pruneDeleted(c.Children)
		if c.Deleted && len(c.Children) == 0 {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
