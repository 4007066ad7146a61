package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"argocd-diff-preview/internal/config"
	"argocd-diff-preview/internal/git/types"

	"gitlab.com/gitlab-org/api/client-go"
)

var numericProjectID = regexp.MustCompile(`^\d+$`)

// Provider publishes reports as notes on a GitLab merge request
type Provider struct {
	client  *gitlab.Client
	notes   *NoteStore
	webURL  string
	project string // As configured: namespaced path or numeric ID
	path    string // Namespaced path; resolved on first use for numeric IDs
}

// NewProvider creates a GitLab provider for a merge request
func NewProvider(cfg *config.Config, mrIID int64) (*Provider, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		client:  client,
		notes:   NewNoteStore(client, cfg.GitLabProject, mrIID),
		webURL:  webURL(cfg.GitLabBaseURL),
		project: cfg.GitLabProject,
	}
	if !numericProjectID.MatchString(cfg.GitLabProject) {
		p.path = strings.Trim(cfg.GitLabProject, "/")
	}
	return p, nil
}

// Name returns the platform name
func (p *Provider) Name() string {
	return "GitLab"
}

// Comments returns the merge request's note store. GitLab cannot hide notes, so outdated ones are deleted.
func (p *Provider) Comments() types.CommentStore {
	return p.notes
}

// Repository returns the namespaced path of the project.
// A numeric project ID is looked up once through the projects API.
func (p *Provider) Repository(ctx context.Context) (string, error) {
	if p.path != "" {
		return p.path, nil
	}

	project, _, err := p.client.Projects.GetProject(p.project, nil, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get GitLab project %s: %w", p.project, err)
	}
	if project.PathWithNamespace == "" {
		return "", fmt.Errorf("GitLab project %s has no path", p.project)
	}

	p.path = project.PathWithNamespace
	slog.Debug("Resolved GitLab project path", "project", p.project, "path", p.path)
	return p.path, nil
}

// CommitURL returns the web URL of a commit, or empty while a numeric project ID is unresolved
func (p *Provider) CommitURL(sha string) string {
	if p.path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/-/commit/%s", p.webURL, p.path, sha)
}

// webURL strips the API path from a GitLab base URL
func webURL(baseURL string) string {
	url := strings.TrimSuffix(baseURL, "/")
	url = strings.TrimSuffix(url, "/api/v4")
	return strings.TrimSuffix(url, "/")
}
