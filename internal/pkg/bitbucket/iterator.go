package bitbucket

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const pageLength = 50

// bitbucketIterator allows iterating over
// a paged response of a Bitbucket API call
type bitbucketIterator[T any] struct {
	Client     *BitbucketCloudClient
	RequestURL string
	Parse      func(value gjson.Result) (T, error)
	hasNext    bool
	nextURL    string
}

// newBitbucketIteratorOptions is the options for creating a new bitbucket iterator
type newBitbucketIteratorOptions[T any] struct {
	// Client is the bitbucket client
	Client *BitbucketCloudClient
	// RequestURL is the request URL, relative to the client's base URL
	RequestURL string
	// Parse is the function to parse one value of a page
	Parse func(value gjson.Result) (T, error)
}

// newBitbucketIterator creates a new bitbucket iterator
func newBitbucketIterator[T any](options *newBitbucketIteratorOptions[T]) *bitbucketIterator[T] {
	return &bitbucketIterator[T]{
		Client:     options.Client,
		RequestURL: options.RequestURL,
		Parse:      options.Parse,
		hasNext:    true,
		nextURL:    "",
	}
}

func (i *bitbucketIterator[T]) HasNext() bool {
	return i.hasNext
}

// NextURL is the URL of the first page that has not been fetched yet.
func (i *bitbucketIterator[T]) NextURL() string {
	if !i.hasNext {
		return ""
	}
	return i.nextURL
}

// GetAll returns a list values from all pages
func (i *bitbucketIterator[T]) GetAll(ctx context.Context) ([]T, error) {
	return i.GetPages(ctx, 0)
}

// GetPages returns the values of at most maxPages pages. Zero means no limit.
func (i *bitbucketIterator[T]) GetPages(ctx context.Context, maxPages int) ([]T, error) {
	result := []T{}
	for page := 0; i.HasNext() && (maxPages <= 0 || page < maxPages); page++ {
		list, err := i.Next(ctx)
		if err != nil {
			return nil, err
		}

		result = append(result, list...)
	}

	return result, nil
}

func (i *bitbucketIterator[T]) sendRequest(
	ctx context.Context,
	request *resty.Request,
	url string,
) ([]T, error) {
	err := i.Client.wait(ctx)
	if err != nil {
		return nil, err
	}

	r, err := request.Get(url)
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, errors.New(string(r.Body()))
	}
	parsed := gjson.ParseBytes(r.Body())

	i.nextURL = parsed.Get("next").String()
	if i.nextURL == "" {
		i.hasNext = false
	}

	return i.parse(parsed)
}

func (i *bitbucketIterator[T]) parse(parsed gjson.Result) ([]T, error) {
	list := []T{}

	var parseErr error
	parsed.Get("values").ForEach(func(key, value gjson.Result) bool {
		obj, err := i.Parse(value)
		if err != nil {
			parseErr = err
			return false
		}

		list = append(list, obj)
		return true
	})

	return list, parseErr
}

func (i *bitbucketIterator[T]) doInitialCall(ctx context.Context) ([]T, error) {
	r := i.Client.request(ctx).
		SetQueryParam("pagelen", fmt.Sprint(pageLength))

	return i.sendRequest(ctx, r, i.RequestURL)
}

func (i *bitbucketIterator[T]) doNextCall(ctx context.Context) ([]T, error) {
	return i.sendRequest(ctx, i.Client.request(ctx), i.nextURL)
}

func (i *bitbucketIterator[T]) Next(ctx context.Context) ([]T, error) {
	if !i.hasNext {
		return nil, nil
	}

	if i.nextURL == "" {
		return i.doInitialCall(ctx)
	}

	return i.doNextCall(ctx)
}
