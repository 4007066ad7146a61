package graphql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Minimizer hides comments through the GraphQL minimizeComment mutation,
// which the REST API does not offer
type Minimizer struct {
	client *githubv4.Client
}

// NewMinimizer creates a Minimizer authenticated with token
func NewMinimizer(token string) *Minimizer {
	src := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(context.Background(), src)
	return &Minimizer{client: githubv4.NewClient(httpClient)}
}

// Minimize collapses the comment with the given node ID and marks it as outdated
func (m *Minimizer) Minimize(ctx context.Context, nodeID string) error {
	if nodeID == "" {
		return fmt.Errorf("comment has no node ID")
	}

	var mutation struct {
		MinimizeComment struct {
			MinimizedComment struct {
				IsMinimized bool
			}
		} `graphql:"minimizeComment(input: $input)"`
	}
	input := githubv4.MinimizeCommentInput{
		SubjectID:  githubv4.ID(nodeID),
		Classifier: githubv4.ReportedContentClassifiersOutdated,
	}

	if err := m.client.Mutate(ctx, &mutation, input, nil); err != nil {
		return fmt.Errorf("failed to minimize comment %s: %w", nodeID, err)
	}

	slog.Debug("GitHub GraphQL response", "node_id", nodeID, "minimized", mutation.MinimizeComment.MinimizedComment.IsMinimized)
	return nil
}
