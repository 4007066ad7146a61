package argocd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"argocd-diff-preview/internal/config"
	httputil "argocd-diff-preview/internal/http"

	"github.com/hashicorp/go-retryablehttp"
)

// maxResponseBytes caps the size of an application list response
const maxResponseBytes = 64 << 20

// Client talks to the ArgoCD REST API
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	token   string
}

// NewClient creates an ArgoCD API client authenticated with the configured token
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http: httputil.NewRetryableClient(httputil.HTTPClientOptions{
			Timeout:       60 * time.Second,
			SkipSSLVerify: cfg.ArgoCDSkipSSLVerify,
			RetryMax:      3,
		}, slog.Default()),
		baseURL: cfg.ArgoCDServerURL,
		token:   cfg.ArgoCDToken,
	}
}

// ListApplications returns every application visible to the token
func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	url := c.baseURL + "/api/v1/applications"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ArgoCD request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list ArgoCD applications: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read ArgoCD response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var list applicationList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse ArgoCD applications: %w", err)
	}

	slog.Debug("ArgoCD API response", "applications", len(list.Items))
	return list.Items, nil
}
