package shared

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"argocd-diff-preview/internal/git/types"
)

// SyncComments makes the request's marked comments match bodies.
// Existing comments carrying marker are updated in place in order, missing ones are
// created one at a time so that creation order matches body order, and surplus
// comments are retired when the store supports it or deleted otherwise.
// An empty bodies list posts nothing and only clears stale comments.
func SyncComments(ctx context.Context, store types.CommentStore, marker string, bodies []string) error {
	comments, err := store.ListComments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list comments: %w", err)
	}

	var existing []types.Comment
	for _, c := range comments {
		if strings.Contains(c.Body, marker) {
			existing = append(existing, c)
		}
	}

	slog.Debug("Synchronizing comments", "existing", len(existing), "bodies", len(bodies))

	for i, body := range bodies {
		if i < len(existing) {
			if existing[i].Body == body {
				slog.Debug("Comment unchanged", "part", i+1, "id", existing[i].ID)
				continue
			}
			if err := store.UpdateComment(ctx, existing[i].ID, body); err != nil {
				return fmt.Errorf("failed to update comment %d: %w", existing[i].ID, err)
			}
			slog.Info("Updated comment", "part", i+1, "id", existing[i].ID)
			continue
		}

		if err := store.CreateComment(ctx, body); err != nil {
			return fmt.Errorf("failed to create comment %d of %d: %w", i+1, len(bodies), err)
		}
		slog.Info("Created comment", "part", i+1)
	}

	if len(existing) > len(bodies) {
		return removeStale(ctx, store, marker, existing[len(bodies):])
	}
	return nil
}

// removeStale retires or deletes comments left over from a previous, longer report.
// Retired comments lose the marker first so later runs no longer pick them up.
func removeStale(ctx context.Context, store types.CommentStore, marker string, stale []types.Comment) error {
	retirer, canRetire := store.(types.CommentRetirer)

	for _, c := range stale {
		if !canRetire {
			if err := store.DeleteComment(ctx, c.ID); err != nil {
				return fmt.Errorf("failed to delete comment %d: %w", c.ID, err)
			}
			slog.Info("Deleted outdated comment", "id", c.ID)
			continue
		}

		body := strings.ReplaceAll(c.Body, marker, "")
		if err := store.UpdateComment(ctx, c.ID, body); err != nil {
			return fmt.Errorf("failed to unmark comment %d: %w", c.ID, err)
		}
		if err := retirer.RetireComment(ctx, c); err != nil {
			return fmt.Errorf("failed to retire comment %d: %w", c.ID, err)
		}
		slog.Info("Retired outdated comment", "id", c.ID)
	}
	return nil
}
