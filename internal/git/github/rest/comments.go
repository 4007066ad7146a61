package rest

import (
	"context"
	"fmt"
	"log/slog"

	ghshared "argocd-diff-preview/internal/git/github/shared"
	"argocd-diff-preview/internal/git/types"

	"github.com/google/go-github/v80/github"
)

// CommentStore implements types.CommentStore for the issue comments of a pull request
type CommentStore struct {
	client   *github.Client
	owner    string
	repo     string
	prNumber int
	login    string // Author whose comments are listed; empty lists all authors

	loginResolved bool
}

// NewCommentStore creates a store for a pull request
func NewCommentStore(client *github.Client, owner, repo string, prNumber int) *CommentStore {
	return &CommentStore{
		client:   client,
		owner:    owner,
		repo:     repo,
		prNumber: prNumber,
	}
}

// resolveLogin looks up the token's own login once so that only comments written by this
// identity are considered. Tokens that cannot read their user (e.g. GitHub Actions tokens)
// fall back to every author.
func (s *CommentStore) resolveLogin(ctx context.Context) {
	if s.loginResolved {
		return
	}
	s.loginResolved = true

	user, _, err := s.client.Users.Get(ctx, "")
	if err != nil {
		slog.Debug("Could not determine authenticated GitHub user, matching comments from every author", "error", err)
		return
	}

	s.login = user.GetLogin()
	slog.Debug("Authenticated GitHub user", "login", s.login)
}

// ListComments returns the pull request's issue comments in creation order
func (s *CommentStore) ListComments(ctx context.Context) ([]types.Comment, error) {
	s.resolveLogin(ctx)

	comments, err := ghshared.FetchAllPaginated(ctx,
		func(ctx context.Context, opts *github.ListOptions) ([]*github.IssueComment, *github.Response, error) {
			return s.client.Issues.ListComments(ctx, s.owner, s.repo, s.prNumber, &github.IssueListCommentsOptions{
				Sort:        github.Ptr("created"),
				Direction:   github.Ptr("asc"),
				ListOptions: *opts,
			})
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments for PR #%d: %w", s.prNumber, err)
	}

	result := make([]types.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil || (s.login != "" && c.GetUser().GetLogin() != s.login) {
			continue
		}
		result = append(result, types.Comment{
			ID:     c.GetID(),
			NodeID: c.GetNodeID(),
			Body:   c.GetBody(),
		})
	}

	slog.Debug("GitHub API response", "pr", s.prNumber, "comments", len(comments), "own", len(result))
	return result, nil
}

// CreateComment posts a new comment on the pull request
func (s *CommentStore) CreateComment(ctx context.Context, body string) error {
	_, _, err := s.client.Issues.CreateComment(ctx, s.owner, s.repo, s.prNumber, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		return fmt.Errorf("failed to create comment on PR #%d: %w", s.prNumber, err)
	}
	return nil
}

// UpdateComment replaces the body of a comment
func (s *CommentStore) UpdateComment(ctx context.Context, id int64, body string) error {
	_, _, err := s.client.Issues.EditComment(ctx, s.owner, s.repo, id, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		return fmt.Errorf("failed to edit comment %d: %w", id, err)
	}
	return nil
}

// DeleteComment removes a comment
func (s *CommentStore) DeleteComment(ctx context.Context, id int64) error {
	if _, err := s.client.Issues.DeleteComment(ctx, s.owner, s.repo, id); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return nil
}

// ChangedFiles returns the paths touched by the pull request, including the old path of renamed files
func (s *CommentStore) ChangedFiles(ctx context.Context) ([]string, error) {
	files, err := ghshared.FetchAllPaginated(ctx,
		func(ctx context.Context, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
			return s.client.PullRequests.ListFiles(ctx, s.owner, s.repo, s.prNumber, opts)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list files for PR #%d: %w", s.prNumber, err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.GetFilename())
		if previous := f.GetPreviousFilename(); previous != "" {
			paths = append(paths, previous)
		}
	}

	slog.Debug("GitHub API response", "pr", s.prNumber, "changed_files", len(paths))
	return paths, nil
}
