package utils

import (
	"context"

	"prdiff/internal/cli/paramutils"
	"prdiff/internal/commentctl"
	"prdiff/internal/commentctl/memhost"
	"prdiff/internal/configutils"
	"prdiff/internal/errcodes"
	"prdiff/internal/domain/pullrequest"
	"prdiff/internal/filechanges"
	"prdiff/internal/gitutils"
	"prdiff/internal/issuelinks"
	"prdiff/internal/pkg/bitbucket"
	"prdiff/internal/prdetail"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client is the remote host used by the commands.
type Client interface {
	pullrequest.Repository
	GetPullRequest(ctx context.Context, repo *pullrequest.Repo, id string) (*pullrequest.Entity, error)
}

// Session wires the core packages together for one command invocation.
type Session struct {
	Settings *configutils.Settings
	Client   Client
	RepoPath string

	Threads  *memhost.Host
	Comments *commentctl.Controller
	Builder  *filechanges.Builder
	Issues   pullrequest.IssueLinker

	// OpenLocal opens the local checkout at dir.
	OpenLocal func(dir, remote string) (pullrequest.LocalRepo, error)
}

func NewSession(settings *configutils.Settings, client Client, repoPath string) *Session {
	threads := memhost.New()
	comments := commentctl.New(client, threads)

	return &Session{
		Settings: settings,
		Client:   client,
		RepoPath: repoPath,
		Threads:  threads,
		Comments: comments,
		Builder:  filechanges.NewBuilder(settings, comments),
		Issues:   issuelinks.New(),
		OpenLocal: func(dir, remote string) (pullrequest.LocalRepo, error) {
			r, err := gitutils.Open(dir, remote)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	}
}

// Load builds a session from the command flags.
func Load(flags paramutils.FlagSet) (*Session, error) {
	repoPath, err := paramutils.GetRepoPath(flags)
	if err != nil {
		return nil, err
	}

	settings, err := paramutils.LoadSettings(flags, repoPath)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(settings.LogLevel())

	client, err := bitbucket.DefaultClient(settings.Viper())
	if err != nil {
		return nil, err
	}

	return NewSession(settings, client, repoPath), nil
}

// Repository resolves the workspace/repo argument. With no argument the
// remote of the local checkout is used.
func (s *Session) Repository(name string) (*pullrequest.Repo, error) {
	if name != "" {
		return paramutils.ParseRepository(name)
	}

	local, err := gitutils.Open(s.RepoPath, s.Settings.RemoteName())
	if err != nil {
		return nil, err
	}

	return local.GetRemoteRepo()
}

// PullRequest fetches the pull request and attaches the local checkout
// when there is one.
func (s *Session) PullRequest(ctx context.Context, repo *pullrequest.Repo, id string) (*pullrequest.Entity, error) {
	if id == "" {
		return nil, errcodes.ErrMissingPullRequestID
	}

	pr, err := s.Client.GetPullRequest(ctx, repo, id)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot get pull request %s of %s", id, repo.FullName())
	}

	local, err := s.OpenLocal(s.RepoPath, s.Settings.RemoteName())
	if err != nil {
		log.Debug().Err(err).Str("path", s.RepoPath).Msg("no local checkout, merge bases are not computed")
		return pr, nil
	}
	pr.LocalRepo = local

	return pr, nil
}

func (s *Session) NewDetail(pr *pullrequest.Entity, refresh func(*prdetail.Detail)) *prdetail.Detail {
	return prdetail.New(&prdetail.Options{
		PullRequest: pr,
		Repository:  s.Client,
		Builder:     s.Builder,
		Issues:      s.Issues,
		Threads:     s.Comments,
		Refresh:     refresh,
	})
}
