package pullrequest

import (
	"context"
	"sync"
)

// MockRepository is a Repository returning canned values. Calls are
// counted per method name.
type MockRepository struct {
	mu    sync.Mutex
	Calls map[string]int

	ChangedFiles    []*FileDiff
	ChangedFilesErr error
	Comments        *PaginatedComments
	CommentsErr     error
	Conflicts       []string
	ConflictsErr    error
	Tasks           []*Task
	TasksErr        error
	Commits         []*Commit
	CommitsErr      error

	// Blocks, when set, is received from before GetChangedFiles and
	// GetComments return.
	Blocks chan struct{}
	// TasksBlock, when set, is received from before GetTasks returns.
	TasksBlock chan struct{}

	PostCommentFn   func(o *PostCommentOptions) (*Comment, error)
	EditCommentFn   func(o *EditCommentOptions) (*Comment, error)
	DeleteCommentFn func(o *DeleteCommentOptions) error
	PostTaskFn      func(o *PostTaskOptions) (*Task, error)
	EditTaskFn      func(o *EditTaskOptions) (*Task, error)
	DeleteTaskFn    func(o *DeleteTaskOptions) error
}

func (m *MockRepository) called(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[name]++
}

// CallCount returns how many times the named method was invoked.
func (m *MockRepository) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockRepository) wait(ctx context.Context) error {
	if m.Blocks == nil {
		return nil
	}
	select {
	case <-m.Blocks:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockRepository) GetChangedFiles(ctx context.Context, pr *Entity) ([]*FileDiff, error) {
	m.called("GetChangedFiles")
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.ChangedFiles, m.ChangedFilesErr
}

func (m *MockRepository) GetComments(ctx context.Context, pr *Entity) (*PaginatedComments, error) {
	m.called("GetComments")
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.Comments == nil && m.CommentsErr == nil {
		return &PaginatedComments{}, nil
	}
	return m.Comments, m.CommentsErr
}

func (m *MockRepository) GetConflictedFiles(ctx context.Context, pr *Entity) ([]string, error) {
	m.called("GetConflictedFiles")
	return m.Conflicts, m.ConflictsErr
}

func (m *MockRepository) GetTasks(ctx context.Context, pr *Entity) ([]*Task, error) {
	m.called("GetTasks")
	if m.TasksBlock != nil {
		select {
		case <-m.TasksBlock:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Tasks, m.TasksErr
}

func (m *MockRepository) GetCommits(ctx context.Context, pr *Entity) ([]*Commit, error) {
	m.called("GetCommits")
	return m.Commits, m.CommitsErr
}

func (m *MockRepository) PostComment(ctx context.Context, o *PostCommentOptions) (*Comment, error) {
	m.called("PostComment")
	return m.PostCommentFn(o)
}

func (m *MockRepository) EditComment(ctx context.Context, o *EditCommentOptions) (*Comment, error) {
	m.called("EditComment")
	return m.EditCommentFn(o)
}

func (m *MockRepository) DeleteComment(ctx context.Context, o *DeleteCommentOptions) error {
	m.called("DeleteComment")
	return m.DeleteCommentFn(o)
}

func (m *MockRepository) PostTask(ctx context.Context, o *PostTaskOptions) (*Task, error) {
	m.called("PostTask")
	return m.PostTaskFn(o)
}

func (m *MockRepository) EditTask(ctx context.Context, o *EditTaskOptions) (*Task, error) {
	m.called("EditTask")
	return m.EditTaskFn(o)
}

func (m *MockRepository) DeleteTask(ctx context.Context, o *DeleteTaskOptions) error {
	m.called("DeleteTask")
	return m.DeleteTaskFn(o)
}

// MockLocalRepo is a LocalRepo with a fixed merge base.
type MockLocalRepo struct {
	MergeBase string
	Err       error
	Remote    string
	Refs      [][2]string
}

func (m *MockLocalRepo) GetMergeBase(ctx context.Context, refA, refB string) (string, error) {
	m.Refs = append(m.Refs, [2]string{refA, refB})
	return m.MergeBase, m.Err
}

func (m *MockLocalRepo) RemoteName() string {
	return m.Remote
}

// MockIssueLinker returns fixed issue keys.
type MockIssueLinker struct {
	Jira         []string
	JiraErr      error
	Bitbucket    []string
	BitbucketErr error
}

func (m *MockIssueLinker) RelatedJiraIssues(ctx context.Context, pr *Entity, commits []*Commit) ([]string, error) {
	return m.Jira, m.JiraErr
}

func (m *MockIssueLinker) RelatedBitbucketIssues(ctx context.Context, pr *Entity, commits []*Commit) ([]string, error) {
	return m.Bitbucket, m.BitbucketErr
}
