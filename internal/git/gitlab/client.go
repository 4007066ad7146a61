package gitlab

import (
	"fmt"
	"time"

	"argocd-diff-preview/internal/config"
	httputil "argocd-diff-preview/internal/http"

	"gitlab.com/gitlab-org/api/client-go"
)

// NewClient creates a GitLab API client. The client library retries rate-limited and failed requests itself.
func NewClient(cfg *config.Config) (*gitlab.Client, error) {
	httpClient := httputil.NewHTTPClient(httputil.HTTPClientOptions{
		Timeout:       30 * time.Second,
		SkipSSLVerify: cfg.GitLabSkipSSLVerify,
	})

	client, err := gitlab.NewClient(cfg.GitLabToken, gitlab.WithBaseURL(cfg.GitLabBaseURL), gitlab.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client for %s: %w", cfg.GitLabBaseURL, err)
	}
	return client, nil
}
