package gitlab

import (
	"context"
	"fmt"
	"log/slog"

	"argocd-diff-preview/internal/git/types"

	"gitlab.com/gitlab-org/api/client-go"
)

// NoteStore implements types.CommentStore for the notes of a merge request
type NoteStore struct {
	client      *gitlab.Client
	projectPath string
	mrIID       int64
	username    string // Author whose notes are listed; empty lists all authors

	usernameResolved bool
}

// NewNoteStore creates a store for a merge request
func NewNoteStore(client *gitlab.Client, projectPath string, mrIID int64) *NoteStore {
	return &NoteStore{
		client:      client,
		projectPath: projectPath,
		mrIID:       mrIID,
	}
}

// resolveUsername looks up the token's own username once; job tokens that
// cannot read the current user fall back to every author
func (s *NoteStore) resolveUsername(ctx context.Context) {
	if s.usernameResolved {
		return
	}
	s.usernameResolved = true

	user, _, err := s.client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		slog.Debug("Could not determine authenticated GitLab user, matching notes from every author", "error", err)
		return
	}

	s.username = user.Username
	slog.Debug("Authenticated GitLab user", "username", s.username)
}

// ListComments returns the merge request's user notes in creation order
func (s *NoteStore) ListComments(ctx context.Context) ([]types.Comment, error) {
	s.resolveUsername(ctx)

	var allNotes []*gitlab.Note
	opts := &gitlab.ListMergeRequestNotesOptions{
		ListOptions: gitlab.ListOptions{
			PerPage: 100,
			Page:    1,
		},
		OrderBy: gitlab.Ptr("created_at"),
		Sort:    gitlab.Ptr("asc"),
	}

	for {
		notes, resp, err := s.client.Notes.ListMergeRequestNotes(s.projectPath, s.mrIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to get notes for MR !%d: %w", s.mrIID, err)
		}

		allNotes = append(allNotes, notes...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	var result []types.Comment
	for _, note := range allNotes {
		if !isOwnNote(note, s.username) {
			continue
		}
		result = append(result, types.Comment{ID: note.ID, Body: note.Body})
	}

	slog.Debug("GitLab API response", "mr_iid", s.mrIID, "notes", len(allNotes), "own", len(result))
	return result, nil
}

// isOwnNote reports whether a note is a user note written by username (any author when empty)
func isOwnNote(note *gitlab.Note, username string) bool {
	if note == nil || note.System {
		return false
	}
	return username == "" || note.Author.Username == username
}

// CreateComment posts a new note on the merge request
func (s *NoteStore) CreateComment(ctx context.Context, body string) error {
	_, _, err := s.client.Notes.CreateMergeRequestNote(s.projectPath, s.mrIID,
		&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.Ptr(body)}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create note on MR !%d: %w", s.mrIID, err)
	}
	return nil
}

// UpdateComment replaces the body of a note
func (s *NoteStore) UpdateComment(ctx context.Context, id int64, body string) error {
	_, _, err := s.client.Notes.UpdateMergeRequestNote(s.projectPath, s.mrIID, id,
		&gitlab.UpdateMergeRequestNoteOptions{Body: gitlab.Ptr(body)}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to update note %d on MR !%d: %w", id, s.mrIID, err)
	}
	return nil
}

// DeleteComment removes a note
func (s *NoteStore) DeleteComment(ctx context.Context, id int64) error {
	if _, err := s.client.Notes.DeleteMergeRequestNote(s.projectPath, s.mrIID, id, gitlab.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete note %d on MR !%d: %w", id, s.mrIID, err)
	}
	return nil
}
