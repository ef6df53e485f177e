package prdetail

import (
	"context"
	"sync"

	"prdiff/internal/domain/pullrequest"
	"prdiff/internal/filechanges"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	StateIdle State = iota
	StateLoadingCritical
	StateLoadingNonCritical
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingCritical:
		return "loading"
	case StateLoadingNonCritical:
		return "loading details"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ThreadDisposer drops the comment threads of a pull request.
type ThreadDisposer interface {
	DisposePR(prHref string)
}

type Options struct {
	PullRequest *pullrequest.Entity
	Repository  pullrequest.Repository
	Builder     *filechanges.Builder
	// Issues is optional.
	Issues pullrequest.IssueLinker
	// Threads is optional.
	Threads ThreadDisposer
	// Refresh is called, outside of any lock, every time the children change.
	Refresh func(d *Detail)
}

// Detail aggregates everything shown under one pull request.
type Detail struct {
	pr      *pullrequest.Entity
	repo    pullrequest.Repository
	builder *filechanges.Builder
	issues  pullrequest.IssueLinker
	threads ThreadDisposer
	refresh func(d *Detail)

	mu          sync.Mutex
	state       State
	loading     bool
	dirty       bool
	disposed    bool
	done        chan struct{}
	children    []filechanges.Node
	description *filechanges.Description
	commits     *filechanges.CommitSection
	related     []filechanges.Node
	files       []filechanges.Node

	running sync.WaitGroup
}

func New(o *Options) *Detail {
	return &Detail{
		pr:          o.PullRequest,
		repo:        o.Repository,
		builder:     o.Builder,
		issues:      o.Issues,
		threads:     o.Threads,
		refresh:     o.Refresh,
		done:        make(chan struct{}),
		description: &filechanges.Description{PullRequest: o.PullRequest},
		commits:     &filechanges.CommitSection{},
	}
}

func (d *Detail) PullRequest() *pullrequest.Entity {
	return d.pr
}

func (d *Detail) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// MarkDirty makes the next Children call reload.
func (d *Detail) MarkDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = true
}

// Dispose cancels any load in flight, drops its results and releases the
// pull request's comment threads.
func (d *Detail) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	close(d.done)
	d.mu.Unlock()

	if d.threads != nil {
		d.threads.DisposePR(d.pr.URL)
	}
}

// Children returns the current nodes. A load is started in the background
// when nothing was loaded yet or the detail was marked dirty. The load
// outlives ctx and is only cancelled by Dispose.
func (d *Detail) Children(ctx context.Context) []filechanges.Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.disposed && !d.loading && (d.state == StateIdle || d.dirty) {
		d.begin()
		d.running.Add(1)
		bg := context.WithoutCancel(ctx)
		go func() {
			defer d.running.Done()
			_ = d.run(bg)
		}()
	}

	return d.children
}

// Load aggregates the pull request synchronously. It is a no-op while
// another load is in flight. Only critical failures are returned.
func (d *Detail) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.disposed || d.loading {
		d.mu.Unlock()
		return nil
	}
	d.begin()
	d.mu.Unlock()

	return d.run(ctx)
}

// begin must be called with mu held.
func (d *Detail) begin() {
	d.loading = true
	d.dirty = false
	d.state = StateLoadingCritical
	d.children = []filechanges.Node{d.description, &filechanges.Loading{}}
}

// apply runs fn under the lock and fires the refresh callback, unless the
// detail was disposed.
func (d *Detail) apply(fn func()) bool {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return false
	}
	fn()
	d.mu.Unlock()

	if d.refresh != nil {
		d.refresh(d)
	}
	return true
}

// assemble must be called with mu held.
func (d *Detail) assemble() {
	children := []filechanges.Node{d.description}
	if d.pr.Site.IsCloud {
		children = append(children, d.commits)
	}
	children = append(children, d.related...)
	children = append(children, d.files...)
	d.children = children
}

func (d *Detail) withDone(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-d.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func (d *Detail) run(ctx context.Context) error {
	ctx, cancel := d.withDone(ctx)
	defer cancel()
	defer func() {
		d.mu.Lock()
		d.loading = false
		d.mu.Unlock()
	}()

	var commits []*pullrequest.Commit
	commitsDone := make(chan error, 1)
	if d.pr.Site.IsCloud {
		go func() {
			var err error
			commits, err = d.repo.GetCommits(ctx, d.pr)
			commitsDone <- err
		}()
	} else {
		commitsDone <- nil
	}

	files, comments, err := d.loadCritical(ctx)
	if err != nil {
		log.Debug().Err(err).Str("pr", d.pr.URL).Msg("cannot load pull request")
		d.apply(func() {
			d.state = StateError
			d.children = []filechanges.Node{&filechanges.Error{Err: err}}
		})
		return err
	}

	fileNodes := d.builder.CreateFileChangesNodes(ctx, d.pr, comments, files, nil, nil)
	applied := d.apply(func() {
		d.files = fileNodes
		d.assemble()
	})
	if !applied {
		return nil
	}

	err = <-commitsDone
	if err != nil {
		log.Debug().Err(err).Str("pr", d.pr.URL).Msg("cannot load commits")
	} else if d.pr.Site.IsCloud {
		d.apply(func() {
			d.commits = &filechanges.CommitSection{Loaded: true, Commits: commits}
			d.assemble()
		})
	}

	d.mu.Lock()
	if !d.disposed {
		d.state = StateLoadingNonCritical
	}
	d.mu.Unlock()

	err = d.loadNonCritical(ctx, files, comments, commits)
	if err != nil {
		log.Debug().Err(err).Str("pr", d.pr.URL).Msg("cannot load pull request details, keeping files")
	}

	d.mu.Lock()
	if !d.disposed {
		d.state = StateLoaded
	}
	d.mu.Unlock()

	return nil
}

func (d *Detail) loadCritical(ctx context.Context) ([]*pullrequest.FileDiff, *pullrequest.PaginatedComments, error) {
	var files []*pullrequest.FileDiff
	var comments *pullrequest.PaginatedComments

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		files, err = d.repo.GetChangedFiles(ctx, d.pr)
		return errors.Wrap(err, "fetching changed files")
	})
	g.Go(func() error {
		var err error
		comments, err = d.repo.GetComments(ctx, d.pr)
		return errors.Wrap(err, "fetching comments")
	})

	return files, comments, g.Wait()
}

func (d *Detail) loadNonCritical(
	ctx context.Context,
	files []*pullrequest.FileDiff,
	comments *pullrequest.PaginatedComments,
	commits []*pullrequest.Commit,
) error {
	var conflicts []string
	var tasks []*pullrequest.Task

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		conflicts, err = d.repo.GetConflictedFiles(gctx, d.pr)
		return errors.Wrap(err, "fetching conflicted files")
	})
	g.Go(func() error {
		var err error
		tasks, err = d.repo.GetTasks(gctx, d.pr)
		return errors.Wrap(err, "fetching tasks")
	})
	err := g.Wait()
	if err != nil {
		return err
	}

	var jira, bitbucket []string
	var fileNodes []filechanges.Node

	g, gctx = errgroup.WithContext(ctx)
	if d.issues != nil {
		g.Go(func() error {
			var err error
			jira, err = d.issues.RelatedJiraIssues(gctx, d.pr, commits)
			return errors.Wrap(err, "resolving jira issues")
		})
		g.Go(func() error {
			var err error
			bitbucket, err = d.issues.RelatedBitbucketIssues(gctx, d.pr, commits)
			return errors.Wrap(err, "resolving bitbucket issues")
		})
	}
	g.Go(func() error {
		fileNodes = d.builder.CreateFileChangesNodes(gctx, d.pr, comments, files, conflicts, tasks)
		return nil
	})
	err = g.Wait()
	if err != nil {
		return err
	}

	related := []filechanges.Node{}
	if len(jira) > 0 {
		related = append(related, &filechanges.RelatedIssues{Kind: filechanges.IssueKindJira, Keys: jira})
	}
	if len(bitbucket) > 0 {
		related = append(related, &filechanges.RelatedIssues{Kind: filechanges.IssueKindBitbucket, Keys: bitbucket})
	}

	d.apply(func() {
		d.related = related
		d.files = fileNodes
		d.assemble()
	})

	return nil
}
