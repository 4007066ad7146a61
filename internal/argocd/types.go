package argocd

import (
	"fmt"
	"strings"

	"argocd-diff-preview/internal/diff"
)

// Application is the subset of an ArgoCD Application resource used for diffing
type Application struct {
	Metadata ApplicationMetadata `json:"metadata"`
	Spec     ApplicationSpec     `json:"spec"`
	Status   ApplicationStatus   `json:"status"`
}

type ApplicationMetadata struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

type ApplicationSpec struct {
	Source *ApplicationSource `json:"source,omitempty"`
}

type ApplicationSource struct {
	RepoURL        string `json:"repoURL"`
	Path           string `json:"path,omitempty"`
	TargetRevision string `json:"targetRevision,omitempty"`
}

type ApplicationStatus struct {
	Sync SyncStatus `json:"sync"`
}

type SyncStatus struct {
	Status string `json:"status"`
}

// applicationList is the response body of GET /api/v1/applications
type applicationList struct {
	Items []Application `json:"items"`
}

// SourcePath returns the path of the application inside its source repository, or empty
func (a Application) SourcePath() string {
	if a.Spec.Source == nil {
		return ""
	}
	return a.Spec.Source.Path
}

// Ref converts the application to the reference used in diff reports
func (a Application) Ref() diff.AppRef {
	status := diff.SyncStatusUnknown
	switch a.Status.Sync.Status {
	case string(diff.SyncStatusSynced):
		status = diff.SyncStatusSynced
	case string(diff.SyncStatusOutOfSync):
		status = diff.SyncStatusOutOfSync
	}

	return diff.AppRef{
		Name:       a.Metadata.Name,
		SourcePath: a.SourcePath(),
		SyncStatus: status,
	}
}

// CommandError is returned when the ArgoCD CLI exits with an unexpected status
type CommandError struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exitCode"`
	Message  string `json:"message,omitempty"`
}

func (e *CommandError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Message)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// APIError is returned when the ArgoCD API answers with a non-success status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ArgoCD API returned status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}
