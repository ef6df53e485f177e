package pullrequest

import "context"

// Repository is the remote pull request host.
type Repository interface {
	GetChangedFiles(ctx context.Context, pr *Entity) ([]*FileDiff, error)
	GetComments(ctx context.Context, pr *Entity) (*PaginatedComments, error)
	GetConflictedFiles(ctx context.Context, pr *Entity) ([]string, error)
	GetTasks(ctx context.Context, pr *Entity) ([]*Task, error)
	GetCommits(ctx context.Context, pr *Entity) ([]*Commit, error)

	PostComment(ctx context.Context, o *PostCommentOptions) (*Comment, error)
	EditComment(ctx context.Context, o *EditCommentOptions) (*Comment, error)
	DeleteComment(ctx context.Context, o *DeleteCommentOptions) error

	PostTask(ctx context.Context, o *PostTaskOptions) (*Task, error)
	EditTask(ctx context.Context, o *EditTaskOptions) (*Task, error)
	DeleteTask(ctx context.Context, o *DeleteTaskOptions) error
}

// LocalRepo is a checked out copy of the pull request's repository.
type LocalRepo interface {
	GetMergeBase(ctx context.Context, refA, refB string) (string, error)
	RemoteName() string
}

// IssueLinker resolves the issues a pull request refers to.
type IssueLinker interface {
	RelatedJiraIssues(ctx context.Context, pr *Entity, commits []*Commit) ([]string, error)
	RelatedBitbucketIssues(ctx context.Context, pr *Entity, commits []*Commit) ([]string, error)
}

type PostCommentOptions struct {
	PullRequest *Entity
	Content     string
	ParentID    string
	Inline      *Inline
}

type EditCommentOptions struct {
	PullRequest *Entity
	CommentID   string
	Content     string
}

type DeleteCommentOptions struct {
	PullRequest *Entity
	CommentID   string
}

type PostTaskOptions struct {
	PullRequest *Entity
	CommentID   string
	Content     string
}

type EditTaskOptions struct {
	PullRequest *Entity
	Task        *Task
}

type DeleteTaskOptions struct {
	PullRequest *Entity
	TaskID      string
}
