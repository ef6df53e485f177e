package commentctl

import (
	"context"
	"sync"

	"prdiff/internal/diffview"
	"prdiff/internal/domain/pullrequest"
	"prdiff/internal/errcodes"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

type thread struct {
	locator   *diffview.Locator
	rng       Range
	comments  []*pullrequest.Comment
	handle    ThreadHandle
	collapsed bool
}

// Controller keeps the live comment threads of every open pull request,
// keyed by the pull request's URL and the thread's root comment id.
type Controller struct {
	repo     pullrequest.Repository
	renderer ThreadRenderer

	mu    sync.Mutex
	cache map[string]map[string]*thread

	keys keyedMutex
}

func New(repo pullrequest.Repository, renderer ThreadRenderer) *Controller {
	return &Controller{
		repo:     repo,
		renderer: renderer,
		cache:    make(map[string]map[string]*thread),
	}
}

func threadKey(prHref, threadID string) string {
	return prHref + "\x00" + threadID
}

// ProvideComments renders every thread carried by the locator, replacing
// the cached ones.
func (c *Controller) ProvideComments(ctx context.Context, l *diffview.Locator) error {
	for _, t := range l.CommentThreads {
		root := t.Root()
		if root == nil {
			continue
		}

		err := c.CreateOrUpdateThread(ctx, root.ID, l, anchorRange(root), t)
		if err != nil {
			return err
		}
	}

	return nil
}

// CreateOrUpdateThread disposes the cached thread with the same id, if any,
// and renders a new one.
func (c *Controller) CreateOrUpdateThread(
	ctx context.Context,
	threadID string,
	l *diffview.Locator,
	r Range,
	comments []*pullrequest.Comment,
) error {
	unlock := c.keys.lock(threadKey(l.PRHref, threadID))
	defer unlock()

	return c.replaceThread(threadID, l, r, comments)
}

func (c *Controller) replaceThread(threadID string, l *diffview.Locator, r Range, comments []*pullrequest.Comment) error {
	uri, err := l.URI()
	if err != nil {
		return err
	}

	c.mu.Lock()
	old := c.cache[l.PRHref][threadID]
	collapsed := old != nil && old.collapsed
	// whoever removes a thread from the cache disposes it
	delete(c.cache[l.PRHref], threadID)
	c.mu.Unlock()

	if old != nil {
		old.handle.Dispose()
	}

	handle := c.renderer.CreateThread(uri, r, displayComments(comments))
	if collapsed {
		handle.SetCollapsed(true)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.cache[l.PRHref]
	if !ok {
		bucket = make(map[string]*thread)
		c.cache[l.PRHref] = bucket
	}
	bucket[threadID] = &thread{
		locator:   l,
		rng:       r,
		comments:  comments,
		handle:    handle,
		collapsed: collapsed,
	}

	return nil
}

func (c *Controller) lookup(prHref, threadID string) (*thread, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.cache[prHref][threadID]
	if !ok {
		return nil, errors.Wrapf(errcodes.ErrUnknownThread, "thread %s", threadID)
	}

	return t, nil
}

func (c *Controller) disposeThread(prHref, threadID string) {
	c.mu.Lock()
	t, ok := c.cache[prHref][threadID]
	delete(c.cache[prHref], threadID)
	c.mu.Unlock()

	if ok {
		t.handle.Dispose()
	}
}

// mutate runs fn on a cached thread while holding the thread's lock and
// renders the comments it returns. An empty result removes the thread.
func (c *Controller) mutate(
	pr *pullrequest.Entity,
	threadID string,
	fn func(t *thread) ([]*pullrequest.Comment, error),
) error {
	unlock := c.keys.lock(threadKey(pr.URL, threadID))
	defer unlock()

	t, err := c.lookup(pr.URL, threadID)
	if err != nil {
		return err
	}

	comments, err := fn(t)
	if err != nil {
		return err
	}

	if len(comments) == 0 {
		c.disposeThread(pr.URL, threadID)
		return nil
	}

	return c.replaceThread(threadID, t.locator, t.rng, comments)
}

func indexOf(comments []*pullrequest.Comment, id string) int {
	return slices.IndexFunc(comments, func(c *pullrequest.Comment) bool {
		return c.ID == id
	})
}

func commentIndex(comments []*pullrequest.Comment, id string) (int, error) {
	i := indexOf(comments, id)
	if i < 0 {
		return 0, errors.Wrapf(errcodes.ErrUnknownComment, "comment %s", id)
	}
	return i, nil
}

func replaced(comments []*pullrequest.Comment, i int, c *pullrequest.Comment) []*pullrequest.Comment {
	result := slices.Clone(comments)
	result[i] = c
	return result
}

// withTasks copies c with a new task list.
func withTasks(c *pullrequest.Comment, tasks []*pullrequest.Task) *pullrequest.Comment {
	cp := *c
	cp.Tasks = tasks
	return &cp
}

type AddCommentOptions struct {
	PullRequest *pullrequest.Entity
	Locator     *diffview.Locator
	// ThreadID is empty when the comment starts a new thread.
	ThreadID string
	// ParentID defaults to the thread's root comment.
	ParentID string
	// Line is the one based line a new thread is anchored on.
	Line    int
	Content string
}

// AddComment posts a comment, either as a reply in an existing thread or
// as the root of a new thread on the locator's side of the diff.
func (c *Controller) AddComment(ctx context.Context, o *AddCommentOptions) (*pullrequest.Comment, error) {
	if o.ThreadID == "" {
		return c.startThread(ctx, o)
	}

	var posted *pullrequest.Comment
	err := c.mutate(o.PullRequest, o.ThreadID, func(t *thread) ([]*pullrequest.Comment, error) {
		parentID := o.ParentID
		if parentID == "" {
			parentID = o.ThreadID
		}

		comment, err := c.repo.PostComment(ctx, &pullrequest.PostCommentOptions{
			PullRequest: o.PullRequest,
			Content:     o.Content,
			ParentID:    parentID,
		})
		if err != nil {
			return nil, errors.Wrap(err, "cannot post comment")
		}

		posted = comment
		return append(slices.Clone(t.comments), comment), nil
	})

	return posted, err
}

func (c *Controller) startThread(ctx context.Context, o *AddCommentOptions) (*pullrequest.Comment, error) {
	inline := &pullrequest.Inline{Path: o.Locator.Path}
	if o.Locator.LHS {
		inline.From = pullrequest.Int(o.Line)
	} else {
		inline.To = pullrequest.Int(o.Line)
	}

	comment, err := c.repo.PostComment(ctx, &pullrequest.PostCommentOptions{
		PullRequest: o.PullRequest,
		Content:     o.Content,
		Inline:      inline,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot post comment")
	}

	err = c.CreateOrUpdateThread(ctx, comment.ID, o.Locator, anchorRange(comment), []*pullrequest.Comment{comment})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

// EditComment replaces the content of a comment. Its tasks are kept since
// the edit response carries none.
func (c *Controller) EditComment(
	ctx context.Context,
	pr *pullrequest.Entity,
	threadID, commentID, content string,
) (*pullrequest.Comment, error) {
	var edited *pullrequest.Comment
	err := c.mutate(pr, threadID, func(t *thread) ([]*pullrequest.Comment, error) {
		i, err := commentIndex(t.comments, commentID)
		if err != nil {
			return nil, err
		}

		comment, err := c.repo.EditComment(ctx, &pullrequest.EditCommentOptions{
			PullRequest: pr,
			CommentID:   commentID,
			Content:     content,
		})
		if err != nil {
			return nil, errors.Wrap(err, "cannot edit comment")
		}

		comment.Tasks = t.comments[i].Tasks
		comment.Children = t.comments[i].Children
		edited = comment
		return replaced(t.comments, i, comment), nil
	})

	return edited, err
}

// DeleteComment removes a comment. The thread goes away with its last
// comment.
func (c *Controller) DeleteComment(ctx context.Context, pr *pullrequest.Entity, threadID, commentID string) error {
	return c.mutate(pr, threadID, func(t *thread) ([]*pullrequest.Comment, error) {
		i, err := commentIndex(t.comments, commentID)
		if err != nil {
			return nil, err
		}

		err = c.repo.DeleteComment(ctx, &pullrequest.DeleteCommentOptions{
			PullRequest: pr,
			CommentID:   commentID,
		})
		if err != nil {
			return nil, errors.Wrap(err, "cannot delete comment")
		}

		return slices.Delete(slices.Clone(t.comments), i, i+1), nil
	})
}

// AddTask creates a task on a comment of the thread.
func (c *Controller) AddTask(
	ctx context.Context,
	pr *pullrequest.Entity,
	threadID, commentID, content string,
) (*pullrequest.Task, error) {
	var posted *pullrequest.Task
	err := c.mutate(pr, threadID, func(t *thread) ([]*pullrequest.Comment, error) {
		i, err := commentIndex(t.comments, commentID)
		if err != nil {
			return nil, err
		}

		task, err := c.repo.PostTask(ctx, &pullrequest.PostTaskOptions{
			PullRequest: pr,
			CommentID:   commentID,
			Content:     content,
		})
		if err != nil {
			return nil, errors.Wrap(err, "cannot post task")
		}
		if task.CommentID == "" {
			task.CommentID = commentID
		}

		posted = task
		owner := t.comments[i]
		tasks := append(slices.Clone(owner.Tasks), task)
		return replaced(t.comments, i, withTasks(owner, tasks)), nil
	})

	return posted, err
}

func taskIndex(c *pullrequest.Comment, id string) int {
	return slices.IndexFunc(c.Tasks, func(t *pullrequest.Task) bool {
		return t.ID == id
	})
}

// EditTask updates a task's content and completion state.
func (c *Controller) EditTask(
	ctx context.Context,
	pr *pullrequest.Entity,
	threadID string,
	task *pullrequest.Task,
) (*pullrequest.Task, error) {
	var edited *pullrequest.Task
	err := c.mutate(pr, threadID, func(t *thread) ([]*pullrequest.Comment, error) {
		i, err := commentIndex(t.comments, task.CommentID)
		if err != nil {
			return nil, err
		}

		updated, err := c.repo.EditTask(ctx, &pullrequest.EditTaskOptions{
			PullRequest: pr,
			Task:        task,
		})
		if err != nil {
			return nil, errors.Wrap(err, "cannot edit task")
		}
		if updated.CommentID == "" {
			updated.CommentID = task.CommentID
		}

		edited = updated
		owner := t.comments[i]
		tasks := slices.Clone(owner.Tasks)
		if j := taskIndex(owner, task.ID); j >= 0 {
			tasks[j] = updated
		} else {
			log.Debug().Str("task", task.ID).Msg("edited task was not cached, appending it")
			tasks = append(tasks, updated)
		}
		return replaced(t.comments, i, withTasks(owner, tasks)), nil
	})

	return edited, err
}

// DeleteTask removes a task from its comment.
func (c *Controller) DeleteTask(ctx context.Context, pr *pullrequest.Entity, threadID string, task *pullrequest.Task) error {
	return c.mutate(pr, threadID, func(t *thread) ([]*pullrequest.Comment, error) {
		i, err := commentIndex(t.comments, task.CommentID)
		if err != nil {
			return nil, err
		}

		err = c.repo.DeleteTask(ctx, &pullrequest.DeleteTaskOptions{
			PullRequest: pr,
			TaskID:      task.ID,
		})
		if err != nil {
			return nil, errors.Wrap(err, "cannot delete task")
		}

		owner := t.comments[i]
		tasks := slices.Clone(owner.Tasks)
		if j := taskIndex(owner, task.ID); j >= 0 {
			tasks = slices.Delete(tasks, j, j+1)
		}
		return replaced(t.comments, i, withTasks(owner, tasks)), nil
	})
}

func (c *Controller) setTaskComplete(
	ctx context.Context,
	pr *pullrequest.Entity,
	threadID string,
	task *pullrequest.Task,
	complete bool,
) (*pullrequest.Task, error) {
	cp := *task
	cp.IsComplete = complete
	return c.EditTask(ctx, pr, threadID, &cp)
}

func (c *Controller) MarkTaskComplete(ctx context.Context, pr *pullrequest.Entity, threadID string, task *pullrequest.Task) (*pullrequest.Task, error) {
	return c.setTaskComplete(ctx, pr, threadID, task, true)
}

func (c *Controller) MarkTaskIncomplete(ctx context.Context, pr *pullrequest.Entity, threadID string, task *pullrequest.Task) (*pullrequest.Task, error) {
	return c.setTaskComplete(ctx, pr, threadID, task, false)
}

// DisposePR disposes every thread of a pull request and forgets it.
func (c *Controller) DisposePR(prHref string) {
	c.mu.Lock()
	bucket := c.cache[prHref]
	delete(c.cache, prHref)
	c.mu.Unlock()

	for _, t := range bucket {
		t.handle.Dispose()
	}
}

// ClearCommentCache disposes every thread of a pull request but keeps the
// pull request's entry.
func (c *Controller) ClearCommentCache(prHref string) {
	c.mu.Lock()
	bucket, ok := c.cache[prHref]
	if ok {
		c.cache[prHref] = make(map[string]*thread)
	}
	c.mu.Unlock()

	for _, t := range bucket {
		t.handle.Dispose()
	}
}

// ToggleCommentsVisibility collapses every thread of a pull request, or
// expands them all when they are already collapsed.
func (c *Controller) ToggleCommentsVisibility(prHref string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket := c.cache[prHref]
	collapse := false
	for _, t := range bucket {
		if !t.collapsed {
			collapse = true
			break
		}
	}

	for _, t := range bucket {
		t.collapsed = collapse
		t.handle.SetCollapsed(collapse)
	}
}

// ThreadIDs returns the ids of the cached threads of a pull request and
// whether the pull request is known at all.
func (c *Controller) ThreadIDs(prHref string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.cache[prHref]
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids, ok
}
