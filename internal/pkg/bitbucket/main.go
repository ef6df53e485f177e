package bitbucket

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"prdiff/internal/domain/pullrequest"
	"prdiff/internal/errcodes"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL           = "https://api.bitbucket.org/2.0"
	DefaultMaxCommentPages   = 5
	DefaultRequestsPerSecond = 5
)

type BitbucketCloudClient struct {
	baseURL         string
	username        string
	password        string
	maxCommentPages int
	limiter         *rate.Limiter
	rc              *resty.Client
}

var _ pullrequest.Repository = (*BitbucketCloudClient)(nil)

type ClientOptions struct {
	BaseURL           string
	Username          string
	Password          string
	MaxCommentPages   int
	RequestsPerSecond int
}

func New(o *ClientOptions) *BitbucketCloudClient {
	baseURL := o.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxPages := o.MaxCommentPages
	if maxPages <= 0 {
		maxPages = DefaultMaxCommentPages
	}
	rps := o.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	return &BitbucketCloudClient{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		username:        o.Username,
		password:        o.Password,
		maxCommentPages: maxPages,
		limiter:         rate.NewLimiter(rate.Limit(rps), rps),
		rc:              resty.New().SetHostURL(strings.TrimSuffix(baseURL, "/")),
	}
}

func getDefaultConfiguration(v *viper.Viper) (*ClientOptions, error) {
	username := v.GetString("bitbucket.username")
	if username == "" {
		return nil, errcodes.ErrMissingBitbucketUsername
	}
	password := v.GetString("bitbucket.password")
	if password == "" {
		return nil, errcodes.ErrMissingBitbucketPassword
	}

	return &ClientOptions{
		BaseURL:           v.GetString("bitbucket.url"),
		Username:          username,
		Password:          password,
		MaxCommentPages:   v.GetInt("bitbucket.maxCommentPages"),
		RequestsPerSecond: v.GetInt("bitbucket.requestsPerSecond"),
	}, nil
}

// DefaultClient builds a client from the bitbucket.* configuration keys.
func DefaultClient(v *viper.Viper) (*BitbucketCloudClient, error) {
	o, err := getDefaultConfiguration(v)
	if err != nil {
		return nil, err
	}

	return New(o), nil
}

// Site describes the instance this client talks to.
func (c *BitbucketCloudClient) Site() pullrequest.Site {
	return pullrequest.Site{
		BaseURL: c.baseURL,
		IsCloud: strings.Contains(c.baseURL, "api.bitbucket.org"),
	}
}

func (c *BitbucketCloudClient) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

func (c *BitbucketCloudClient) request(ctx context.Context) *resty.Request {
	return c.rc.R().
		SetContext(ctx).
		SetBasicAuth(c.username, c.password).
		SetError(bbError{})
}

func (c *BitbucketCloudClient) send(ctx context.Context, method, url string, body interface{}) (*resty.Response, error) {
	err := c.wait(ctx)
	if err != nil {
		return nil, err
	}

	req := c.request(ctx)
	if body != nil {
		req = req.
			SetHeader("content-type", "application/json").
			SetBody(body)
	}

	r, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}

	if r.IsError() {
		return nil, errors.New(string(r.Body()))
	}

	return r, nil
}

func pullRequestURL(pr *pullrequest.Entity, suffix string) string {
	return fmt.Sprintf(
		"/repositories/%s/%s/pullrequests/%s%s",
		pr.Destination.Repo.Workspace,
		pr.Destination.Repo.Slug,
		pr.ID,
		suffix,
	)
}

func numericID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("bitbucket ids are numeric, got %q", id)
	}
	return n, nil
}

// GetPullRequest fetches one pull request of a repository.
func (c *BitbucketCloudClient) GetPullRequest(ctx context.Context, repo *pullrequest.Repo, id string) (*pullrequest.Entity, error) {
	r, err := c.send(ctx, resty.MethodGet, fmt.Sprintf(
		"/repositories/%s/%s/pullrequests/%s",
		repo.Workspace,
		repo.Slug,
		id,
	), nil)
	if err != nil {
		return nil, err
	}

	pr := parsePullRequest(gjson.ParseBytes(r.Body()))
	pr.Site = c.Site()

	return pr, nil
}

func (c *BitbucketCloudClient) getDiffstat(ctx context.Context, pr *pullrequest.Entity) ([]*pullrequest.FileDiff, error) {
	it := newBitbucketIterator(&newBitbucketIteratorOptions[*pullrequest.FileDiff]{
		Client:     c,
		RequestURL: pullRequestURL(pr, "/diffstat"),
		Parse:      parseDiffstat,
	})

	return it.GetAll(ctx)
}

func (c *BitbucketCloudClient) GetChangedFiles(ctx context.Context, pr *pullrequest.Entity) ([]*pullrequest.FileDiff, error) {
	files, err := c.getDiffstat(ctx, pr)
	if err != nil {
		return nil, err
	}

	r, err := c.send(ctx, resty.MethodGet, pullRequestURL(pr, "/diff"), nil)
	if err != nil {
		return nil, err
	}

	meta, err := parseHunkMeta(r.Body())
	if err != nil {
		log.Warn().Err(err).Str("pr", pr.URL).Msg("cannot parse pull request patch")
		return files, nil
	}

	for _, f := range files {
		key := f.NewPath
		if key == "" {
			key = f.OldPath
		}
		if m, ok := meta[key]; ok {
			f.HunkMeta = m
		}
	}

	return files, nil
}

func (c *BitbucketCloudClient) GetConflictedFiles(ctx context.Context, pr *pullrequest.Entity) ([]string, error) {
	files, err := c.getDiffstat(ctx, pr)
	if err != nil {
		return nil, err
	}

	conflicts := []string{}
	for _, f := range files {
		if f.Status != pullrequest.FileStatusConflict {
			continue
		}
		if f.NewPath != "" {
			conflicts = append(conflicts, f.NewPath)
		} else {
			conflicts = append(conflicts, f.OldPath)
		}
	}

	return conflicts, nil
}

func (c *BitbucketCloudClient) GetComments(ctx context.Context, pr *pullrequest.Entity) (*pullrequest.PaginatedComments, error) {
	it := newBitbucketIterator(&newBitbucketIteratorOptions[*pullrequest.Comment]{
		Client:     c,
		RequestURL: pullRequestURL(pr, "/comments"),
		Parse:      parseComment,
	})

	flat, err := it.GetPages(ctx, c.maxCommentPages)
	if err != nil {
		return nil, err
	}

	return &pullrequest.PaginatedComments{
		Data: nestComments(flat),
		Next: it.NextURL(),
	}, nil
}

func (c *BitbucketCloudClient) GetTasks(ctx context.Context, pr *pullrequest.Entity) ([]*pullrequest.Task, error) {
	it := newBitbucketIterator(&newBitbucketIteratorOptions[*pullrequest.Task]{
		Client:     c,
		RequestURL: pullRequestURL(pr, "/tasks"),
		Parse:      parseTask,
	})

	return it.GetAll(ctx)
}

func (c *BitbucketCloudClient) GetCommits(ctx context.Context, pr *pullrequest.Entity) ([]*pullrequest.Commit, error) {
	it := newBitbucketIterator(&newBitbucketIteratorOptions[*pullrequest.Commit]{
		Client:     c,
		RequestURL: pullRequestURL(pr, "/commits"),
		Parse:      parseCommit,
	})

	return it.GetAll(ctx)
}

func (c *BitbucketCloudClient) PostComment(ctx context.Context, o *pullrequest.PostCommentOptions) (*pullrequest.Comment, error) {
	body := bbCommentBody{Content: bbContent{Raw: o.Content}}
	if o.ParentID != "" {
		id, err := numericID(o.ParentID)
		if err != nil {
			return nil, err
		}
		body.Parent = &bbRef{ID: id}
	}
	if o.Inline != nil {
		body.Inline = &bbInline{Path: o.Inline.Path, From: o.Inline.From, To: o.Inline.To}
	}

	r, err := c.send(ctx, resty.MethodPost, pullRequestURL(o.PullRequest, "/comments"), body)
	if err != nil {
		return nil, err
	}

	return parseComment(gjson.ParseBytes(r.Body()))
}

func (c *BitbucketCloudClient) EditComment(ctx context.Context, o *pullrequest.EditCommentOptions) (*pullrequest.Comment, error) {
	r, err := c.send(
		ctx,
		resty.MethodPut,
		pullRequestURL(o.PullRequest, "/comments/"+o.CommentID),
		bbCommentBody{Content: bbContent{Raw: o.Content}},
	)
	if err != nil {
		return nil, err
	}

	return parseComment(gjson.ParseBytes(r.Body()))
}

func (c *BitbucketCloudClient) DeleteComment(ctx context.Context, o *pullrequest.DeleteCommentOptions) error {
	_, err := c.send(ctx, resty.MethodDelete, pullRequestURL(o.PullRequest, "/comments/"+o.CommentID), nil)
	return err
}

func (c *BitbucketCloudClient) PostTask(ctx context.Context, o *pullrequest.PostTaskOptions) (*pullrequest.Task, error) {
	body := bbTaskBody{Content: bbContent{Raw: o.Content}}
	if o.CommentID != "" {
		id, err := numericID(o.CommentID)
		if err != nil {
			return nil, err
		}
		body.Comment = &bbRef{ID: id}
	}

	r, err := c.send(ctx, resty.MethodPost, pullRequestURL(o.PullRequest, "/tasks"), body)
	if err != nil {
		return nil, err
	}

	return parseTask(gjson.ParseBytes(r.Body()))
}

func (c *BitbucketCloudClient) EditTask(ctx context.Context, o *pullrequest.EditTaskOptions) (*pullrequest.Task, error) {
	state := taskStateUnresolved
	if o.Task.IsComplete {
		state = taskStateResolved
	}

	r, err := c.send(
		ctx,
		resty.MethodPut,
		pullRequestURL(o.PullRequest, "/tasks/"+o.Task.ID),
		bbTaskBody{Content: bbContent{Raw: o.Task.Content}, State: state},
	)
	if err != nil {
		return nil, err
	}

	return parseTask(gjson.ParseBytes(r.Body()))
}

func (c *BitbucketCloudClient) DeleteTask(ctx context.Context, o *pullrequest.DeleteTaskOptions) error {
	_, err := c.send(ctx, resty.MethodDelete, pullRequestURL(o.PullRequest, "/tasks/"+o.TaskID), nil)
	return err
}
