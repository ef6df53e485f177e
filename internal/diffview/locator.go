package diffview

import (
	"encoding/json"
	"net/url"
	"strings"

	"prdiff/internal/domain/pullrequest"
	"prdiff/internal/errcodes"

	"github.com/pkg/errors"
)

// Scheme is the URI scheme of diff locators.
const Scheme = "prdiff"

// Locator identifies one side of a file diff and carries everything needed
// to render the comment threads on it.
type Locator struct {
	Site           pullrequest.Site     `json:"site"`
	LHS            bool                 `json:"lhs"`
	RepoHref       string               `json:"repoHref"`
	PRHref         string               `json:"prHref"`
	PRID           pullrequest.EntityID `json:"prId"`
	BranchName     string               `json:"branchName"`
	CommitHash     string               `json:"commitHash"`
	RHSCommitHash  string               `json:"rhsCommitHash,omitempty"`
	Path           string               `json:"path"`
	CommentThreads []Thread             `json:"commentThreads"`
	AddedLines     []int                `json:"addedLines"`
	DeletedLines   []int                `json:"deletedLines"`
	LineContextMap map[int]int          `json:"lineContextMap"`
}

// URI serializes the locator as prdiff:///<path>?<json>.
func (l *Locator) URI() (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", errors.Wrap(err, "cannot serialize locator")
	}

	u := url.URL{
		Scheme:   Scheme,
		Path:     "/" + l.Path,
		RawQuery: url.QueryEscape(string(data)),
	}

	return u.String(), nil
}

// ParseLocator reads back a locator produced by URI.
func ParseLocator(uri string) (*Locator, error) {
	if !strings.HasPrefix(uri, Scheme+":") {
		return nil, errors.Wrapf(errcodes.ErrMalformedLocator, "unexpected scheme in %q", uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(errcodes.ErrMalformedLocator, err.Error())
	}

	query, err := url.QueryUnescape(u.RawQuery)
	if err != nil {
		return nil, errors.Wrap(errcodes.ErrMalformedLocator, err.Error())
	}

	l := &Locator{}
	err = json.Unmarshal([]byte(query), l)
	if err != nil {
		return nil, errors.Wrap(errcodes.ErrMalformedLocator, err.Error())
	}

	return l, nil
}
