package gitutils

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGoGitRepository struct {
	remotes     []*git.Remote
	err         error
	resolveCall int
}

func (m *mockGoGitRepository) Remotes() ([]*git.Remote, error) {
	return m.remotes, m.err
}

func (m *mockGoGitRepository) ResolveRevision(plumbing.Revision) (*plumbing.Hash, error) {
	m.resolveCall++
	return nil, m.err
}

func (m *mockGoGitRepository) CommitObject(plumbing.Hash) (*object.Commit, error) {
	return nil, m.err
}

type testRepo struct {
	t    *testing.T
	repo *git.Repository
	wt   *git.Worktree
	n    int
}

func newTestRepo(t *testing.T) *testRepo {
	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &testRepo{t: t, repo: repo, wt: wt}
}

func (tr *testRepo) commit(parents ...plumbing.Hash) plumbing.Hash {
	tr.n++
	name := "file.txt"
	err := util.WriteFile(tr.wt.Filesystem, name, []byte(time.Now().String()+string(rune('a'+tr.n))), 0644)
	require.NoError(tr.t, err)
	_, err = tr.wt.Add(name)
	require.NoError(tr.t, err)

	h, err := tr.wt.Commit("commit", &git.CommitOptions{
		Author:  &object.Signature{Name: "t", Email: "t@example.com", When: time.Unix(int64(1000+tr.n), 0)},
		Parents: parents,
	})
	require.NoError(tr.t, err)

	return h
}

func (tr *testRepo) remoteBranch(name string, h plumbing.Hash) {
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", name), h)
	require.NoError(tr.t, tr.repo.Storer.SetReference(ref))
}

func TestRepository_GetMergeBase(t *testing.T) {
	ctx := context.Background()

	t.Run("finds the fork point of two branches", func(t *testing.T) {
		tr := newTestRepo(t)
		base := tr.commit()
		feature := tr.commit(base)
		main := tr.commit(base)
		tr.remoteBranch("main", main)
		tr.remoteBranch("feature", feature)

		r := newRepository(tr.repo, "origin")
		got, err := r.GetMergeBase(ctx, "origin/main", "origin/feature")
		require.NoError(t, err)
		assert.Equal(t, base.String(), got)
	})

	t.Run("an ancestor is its own merge base", func(t *testing.T) {
		tr := newTestRepo(t)
		base := tr.commit()
		head := tr.commit(base)
		tr.remoteBranch("main", base)
		tr.remoteBranch("feature", head)

		r := newRepository(tr.repo, "origin")
		got, err := r.GetMergeBase(ctx, "origin/main", "origin/feature")
		require.NoError(t, err)
		assert.Equal(t, base.String(), got)
	})

	t.Run("serves repeated lookups from the cache", func(t *testing.T) {
		tr := newTestRepo(t)
		base := tr.commit()
		tr.remoteBranch("main", base)
		tr.remoteBranch("feature", tr.commit(base))

		r := newRepository(tr.repo, "origin")
		first, err := r.GetMergeBase(ctx, "origin/main", "origin/feature")
		require.NoError(t, err)
		assert.Equal(t, 1, r.mergeBases.ItemCount())

		second, err := r.GetMergeBase(ctx, "origin/feature", "origin/main")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, r.mergeBases.ItemCount())
	})

	t.Run("fails for unknown refs", func(t *testing.T) {
		tr := newTestRepo(t)
		tr.remoteBranch("main", tr.commit())

		r := newRepository(tr.repo, "origin")
		_, err := r.GetMergeBase(ctx, "origin/main", "origin/missing")
		assert.Error(t, err)
	})

	t.Run("fails when the revision cannot be resolved", func(t *testing.T) {
		vErr := errors.New("resolve err")
		m := &mockGoGitRepository{err: vErr}
		r := newRepository(m, "origin")

		_, err := r.GetMergeBase(ctx, "a", "b")
		assert.True(t, errors.Is(err, vErr))
		assert.Equal(t, 1, m.resolveCall)
	})
}

func TestRepository_GetRemoteRepo(t *testing.T) {
	remote := func(name, url string) *git.Remote {
		return git.NewRemote(nil, &config.RemoteConfig{Name: name, URLs: []string{url}})
	}

	t.Run("fails when cannot get remotes", func(t *testing.T) {
		vErr := errors.New("remotes err")
		r := newRepository(&mockGoGitRepository{err: vErr}, "origin")

		_, err := r.GetRemoteRepo()
		assert.EqualError(t, err, vErr.Error())
	})

	t.Run("fails without a matching remote", func(t *testing.T) {
		r := newRepository(&mockGoGitRepository{
			remotes: []*git.Remote{remote("upstream", "git@bitbucket.org:ws/repo.git")},
		}, "origin")

		_, err := r.GetRemoteRepo()
		assert.Equal(t, ErrNoRemotes, err)
	})

	tests := []struct {
		url       string
		workspace string
		slug      string
	}{
		{"git@bitbucket.org:ws/repo.git", "ws", "repo"},
		{"git@bitbucket.org:ws/repo", "ws", "repo"},
		{"https://user@bitbucket.org/ws/repo.git", "ws", "repo"},
		{"https://bitbucket.org/ws/repo", "ws", "repo"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r := newRepository(&mockGoGitRepository{
				remotes: []*git.Remote{remote("origin", tt.url)},
			}, "origin")

			repo, err := r.GetRemoteRepo()
			require.NoError(t, err)
			assert.Equal(t, tt.workspace, repo.Workspace)
			assert.Equal(t, tt.slug, repo.Slug)
		})
	}

	t.Run("fails for unparsable urls", func(t *testing.T) {
		r := newRepository(&mockGoGitRepository{
			remotes: []*git.Remote{remote("origin", "not a url")},
		}, "origin")

		_, err := r.GetRemoteRepo()
		assert.Equal(t, ErrUnableToParseRemoteRepositoryURI, err)
	})
}
