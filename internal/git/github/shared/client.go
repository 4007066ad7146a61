package shared

import (
	"context"
	"time"

	httputil "argocd-diff-preview/internal/http"

	"github.com/google/go-github/v80/github"
)

// NewRESTClient creates a new GitHub REST API client
func NewRESTClient(token string) *github.Client {
	httpClient := httputil.NewHTTPClient(httputil.HTTPClientOptions{Timeout: 30 * time.Second})
	return github.NewClient(httpClient).WithAuthToken(token)
}

// FetchAllPaginated is a generic helper that fetches all pages of GitHub API results
func FetchAllPaginated[T any](ctx context.Context, fetcher func(context.Context, *github.ListOptions) ([]T, *github.Response, error)) ([]T, error) {
	var allItems []T
	opts := &github.ListOptions{
		PerPage: 100,
		Page:    1,
	}

	for {
		items, resp, err := fetcher(ctx, opts)
		if err != nil {
			return nil, err
		}

		allItems = append(allItems, items...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allItems, nil
}
