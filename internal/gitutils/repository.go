package gitutils

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"time"

	"prdiff/internal/domain/pullrequest"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

var (
	ErrCannotGetLocalRepository         = errors.New("cannot get local repository")
	ErrUnableToParseRemoteRepositoryURI = errors.New("unable to parse remote repository URI")
	ErrMergeBaseNotFound                = errors.New("merge base not found")
	ErrNoRemotes                        = errors.New("repository has no remotes")
)

const (
	mergeBaseExpiration      = 10 * time.Minute
	mergeBaseCleanupInterval = 30 * time.Minute
)

type goGitRepository interface {
	Remotes() ([]*git.Remote, error)
	ResolveRevision(plumbing.Revision) (*plumbing.Hash, error)
	CommitObject(plumbing.Hash) (*object.Commit, error)
}

// Repository is a local checkout of a pull request's repository.
type Repository struct {
	r      goGitRepository
	remote string
	// merge bases keyed by the commit pair, which never changes for a
	// given pair of hashes
	mergeBases *cache.Cache
}

var _ pullrequest.LocalRepo = (*Repository)(nil)

func newRepository(r goGitRepository, remote string) *Repository {
	return &Repository{
		r:          r,
		remote:     remote,
		mergeBases: cache.New(mergeBaseExpiration, mergeBaseCleanupInterval),
	}
}

func OpenRepoRecursevely(input string) (*git.Repository, error) {
	dir := input
	for dir != "/" && dir != "." {
		repo, err := git.PlainOpen(dir)
		if err == nil {
			return repo, nil
		}

		dir = path.Dir(dir)
	}

	return nil, fmt.Errorf("could not recursively open a repo at %s", input)
}

// Open opens the repository containing dir. Refs are qualified with remote.
func Open(dir, remote string) (*Repository, error) {
	r, err := OpenRepoRecursevely(dir)
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	return newRepository(r, remote), nil
}

func (r *Repository) RemoteName() string {
	return r.remote
}

func (r *Repository) resolve(ref string) (*object.Commit, error) {
	h, err := r.r.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve %s", ref)
	}

	return r.r.CommitObject(*h)
}

func mergeBaseKey(a, b plumbing.Hash) string {
	if b.String() < a.String() {
		a, b = b, a
	}
	return a.String() + ".." + b.String()
}

// GetMergeBase returns the best common ancestor of two refs.
func (r *Repository) GetMergeBase(ctx context.Context, refA, refB string) (string, error) {
	a, err := r.resolve(refA)
	if err != nil {
		return "", err
	}
	b, err := r.resolve(refB)
	if err != nil {
		return "", err
	}

	key := mergeBaseKey(a.Hash, b.Hash)
	if v, ok := r.mergeBases.Get(key); ok {
		return v.(string), nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	bases, err := a.MergeBase(b)
	if err != nil {
		return "", err
	}
	if len(bases) == 0 {
		return "", errors.Wrapf(ErrMergeBaseNotFound, "%s and %s", refA, refB)
	}

	hash := bases[0].Hash.String()
	r.mergeBases.SetDefault(key, hash)

	return hash, nil
}

// GetRemoteURLs returns the URLs of every configured remote.
func (r *Repository) GetRemoteURLs() ([]string, error) {
	var repoURLs []string
	remotes, err := r.r.Remotes()
	if err != nil {
		return nil, err
	}

	for _, re := range remotes {
		if r.remote != "" && re.Config().Name != r.remote {
			continue
		}
		repoURLs = append(repoURLs, re.Config().URLs...)
	}

	return repoURLs, nil
}

var remoteURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^git@[^:]+:([^/]+)/(.+?)(\.git)?$`),
	regexp.MustCompile(`^(?:https?|ssh)://(?:[^@/]+@)?[^/]+/([^/]+)/(.+?)(\.git)?/?$`),
}

func extractRepositoryTokens(uri string) ([]string, error) {
	for _, r := range remoteURLPatterns {
		m := r.FindStringSubmatch(uri)
		if len(m) >= 3 {
			return m[1:3], nil
		}
	}

	return nil, ErrUnableToParseRemoteRepositoryURI
}

// GetRemoteRepo derives workspace and slug from the first remote URL.
func (r *Repository) GetRemoteRepo() (*pullrequest.Repo, error) {
	urls, err := r.GetRemoteURLs()
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, ErrNoRemotes
	}

	m, err := extractRepositoryTokens(urls[0])
	if err != nil {
		return nil, err
	}

	return &pullrequest.Repo{Workspace: m[0], Slug: m[1]}, nil
}
