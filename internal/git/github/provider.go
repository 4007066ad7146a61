package github

import (
	"context"
	"fmt"
	"log/slog"

	"argocd-diff-preview/internal/config"
	"argocd-diff-preview/internal/git/github/graphql"
	"argocd-diff-preview/internal/git/github/rest"
	ghshared "argocd-diff-preview/internal/git/github/shared"
	"argocd-diff-preview/internal/git/types"
)

// Provider publishes reports as issue comments on a GitHub pull request
type Provider struct {
	comments  *rest.CommentStore
	minimizer *graphql.Minimizer // Nil when outdated comments are deleted
	owner     string
	repo      string
}

// NewProvider creates a GitHub provider for a pull request.
// Outdated comments are minimized via GraphQL when ADP_GITHUB_MINIMIZE_OUTDATED=true, otherwise deleted.
func NewProvider(cfg *config.Config, prNumber int64) (*Provider, error) {
	owner, repo, err := ghshared.ParseRepository(cfg.GitHubRepository)
	if err != nil {
		return nil, err
	}

	client := ghshared.NewRESTClient(cfg.GitHubToken)
	p := &Provider{
		comments: rest.NewCommentStore(client, owner, repo, int(prNumber)),
		owner:    owner,
		repo:     repo,
	}

	if cfg.GitHubMinimizeOutdated {
		slog.Debug("Minimizing outdated comments via GitHub GraphQL API")
		p.minimizer = graphql.NewMinimizer(cfg.GitHubToken)
	}

	return p, nil
}

// Name returns the platform name
func (p *Provider) Name() string {
	return "GitHub"
}

// Comments returns the pull request's comment store
func (p *Provider) Comments() types.CommentStore {
	if p.minimizer != nil {
		return &minimizingStore{CommentStore: p.comments, minimizer: p.minimizer}
	}
	return p.comments
}

// Repository returns the "owner/repo" name of the repository
func (p *Provider) Repository(ctx context.Context) (string, error) {
	return p.owner + "/" + p.repo, nil
}

// CommitURL returns the web URL of a commit
func (p *Provider) CommitURL(sha string) string {
	return ghshared.CommitURL(p.owner, p.repo, sha)
}

// ChangedFiles returns the files changed by the pull request
func (p *Provider) ChangedFiles(ctx context.Context) ([]string, error) {
	return p.comments.ChangedFiles(ctx)
}

// minimizingStore retires comments by minimizing them instead of deleting them
type minimizingStore struct {
	*rest.CommentStore
	minimizer *graphql.Minimizer
}

func (s *minimizingStore) RetireComment(ctx context.Context, comment types.Comment) error {
	if err := s.minimizer.Minimize(ctx, comment.NodeID); err != nil {
		return fmt.Errorf("failed to minimize comment %d: %w", comment.ID, err)
	}
	return nil
}
