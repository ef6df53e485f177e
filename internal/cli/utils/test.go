package utils

import (
	"context"

	"prdiff/internal/configutils"
	"prdiff/internal/domain/pullrequest"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// MockClient serves PullRequest from GetPullRequest.
type MockClient struct {
	*pullrequest.MockRepository

	PullRequest    *pullrequest.Entity
	PullRequestErr error
	Requested      []string
}

func (m *MockClient) GetPullRequest(ctx context.Context, repo *pullrequest.Repo, id string) (*pullrequest.Entity, error) {
	m.Requested = append(m.Requested, repo.FullName()+"#"+id)
	return m.PullRequest, m.PullRequestErr
}

// NewTestSession builds a session on the default settings without a local
// checkout.
func NewTestSession(client Client) *Session {
	v := viper.New()
	configutils.SetDefaults(v)

	s := NewSession(configutils.NewSettings(v), client, "/work/repo")
	s.OpenLocal = func(dir, remote string) (pullrequest.LocalRepo, error) {
		return nil, errors.New("not a repository")
	}
	return s
}
