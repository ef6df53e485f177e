package filechanges

import (
	"prdiff/internal/diffview"
	"prdiff/internal/domain/pullrequest"
)

// PaginationWarning is shown when the pull request has comment pages that
// were not fetched.
const PaginationWarning = "⚠️ All file comments are not shown. This PR has more comments than what is supported."

// Node is one entry of a pull request's tree.
type Node interface {
	node()
}

type Description struct {
	PullRequest *pullrequest.Entity
}

// CommitSection is a placeholder until Loaded is set.
type CommitSection struct {
	Loaded  bool
	Commits []*pullrequest.Commit
}

type FileChange struct {
	// Path is the path the file is nested under.
	Path string
	Args *diffview.DiffViewArgs
}

type Directory struct {
	Name     string
	Children []Node
}

type Warning struct {
	Label string
}

type IssueKind string

const (
	IssueKindJira      IssueKind = "jira"
	IssueKindBitbucket IssueKind = "bitbucket"
)

type RelatedIssues struct {
	Kind IssueKind
	Keys []string
}

type Loading struct{}

type Error struct {
	Err error
}

func (*Description) node()   {}
func (*CommitSection) node() {}
func (*FileChange) node()    {}
func (*Directory) node()     {}
func (*Warning) node()       {}
func (*RelatedIssues) node() {}
func (*Loading) node()       {}
func (*Error) node()         {}
