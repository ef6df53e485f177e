// Package issuelinks finds the Jira and Bitbucket issues a pull request
// refers to in its title, description and commit messages.
package issuelinks

import (
	"context"
	"regexp"

	"prdiff/internal/domain/pullrequest"
)

var (
	jiraKeyRegexp       = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)
	bitbucketIssueRegex = regexp.MustCompile(`(?:^|[^\w&])#(\d+)\b`)
)

type Linker struct{}

var _ pullrequest.IssueLinker = (*Linker)(nil)

func New() *Linker {
	return &Linker{}
}

func texts(pr *pullrequest.Entity, commits []*pullrequest.Commit) []string {
	result := []string{pr.Title, pr.Description}
	for _, c := range commits {
		result = append(result, c.Message)
	}
	return result
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := []string{}
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}

// RelatedJiraIssues returns the Jira keys mentioned by the pull request in
// the order they first appear.
func (l *Linker) RelatedJiraIssues(ctx context.Context, pr *pullrequest.Entity, commits []*pullrequest.Commit) ([]string, error) {
	keys := []string{}
	for _, text := range texts(pr, commits) {
		keys = append(keys, jiraKeyRegexp.FindAllString(text, -1)...)
	}

	return unique(keys), ctx.Err()
}

// RelatedBitbucketIssues returns the "#N" issue references of the pull
// request in the order they first appear.
func (l *Linker) RelatedBitbucketIssues(ctx context.Context, pr *pullrequest.Entity, commits []*pullrequest.Commit) ([]string, error) {
	refs := []string{}
	for _, text := range texts(pr, commits) {
		for _, m := range bitbucketIssueRegex.FindAllStringSubmatch(text, -1) {
			refs = append(refs, "#"+m[1])
		}
	}

	return unique(refs), ctx.Err()
}
