package errcodes

import "github.com/pkg/errors"

var (
	ErrMissingBitbucketUsername            = errors.New("bitbucket username is missing")
	ErrMissingBitbucketPassword            = errors.New("bitbucket password is missing")
	ErrMissingRepository                   = errors.New("repository is missing")
	ErrMissingPullRequestID                = errors.New("pull request id is missing")
	ErrRepositoryMustBeInFormWorkspaceRepo = errors.New("repository must be in the form of 'workspace/repo'")
	ErrMalformedLocator                    = errors.New("malformed diff locator")
	ErrUnknownThread                       = errors.New("comment thread is not cached")
	ErrUnknownComment                      = errors.New("comment is not part of the thread")
)
