package types

import (
	"context"
)

// CommentStore reads and writes the comments of a single pull or merge request
type CommentStore interface {
	// ListComments returns the request's comments in creation order
	ListComments(ctx context.Context) ([]Comment, error)

	// CreateComment posts a new comment
	CreateComment(ctx context.Context, body string) error

	// UpdateComment replaces the body of an existing comment
	UpdateComment(ctx context.Context, id int64, body string) error

	// DeleteComment removes a comment
	DeleteComment(ctx context.Context, id int64) error
}

// CommentRetirer is implemented by stores that can hide outdated comments instead of deleting them
type CommentRetirer interface {
	RetireComment(ctx context.Context, comment Comment) error
}

// Provider is a git hosting platform (GitHub, GitLab) that receives diff reports
type Provider interface {
	// Name returns the platform name (e.g., "GitHub", "GitLab")
	Name() string

	// Comments returns the comment store of the pull or merge request
	Comments() CommentStore

	// CommitURL returns the web URL of a commit, or empty when unknown
	CommitURL(sha string) string
}

// RepositoryResolver is implemented by providers that know the canonical
// repository path ("owner/repo", "group/project") that applications are sourced from
type RepositoryResolver interface {
	Repository(ctx context.Context) (string, error)
}

// ChangedFilesLister is implemented by providers that can list the files a request changes
type ChangedFilesLister interface {
	ChangedFiles(ctx context.Context) ([]string, error)
}
