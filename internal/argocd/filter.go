package argocd

import (
	"log/slog"
	"slices"
	"strings"
)

// FilterOptions selects the applications that are diffed
type FilterOptions struct {
	Repository      string   // "owner/repo"; empty accepts every repository
	TargetRevisions []string // Revisions tracked from the default branch
	Exclude         []string // Application names to skip
	ChangedFiles    []string // When non-nil, only apps whose path contains a changed file
}

// FilterApplications returns the applications sourced from the repository that
// track one of the target revisions, sorted by name
func FilterApplications(apps []Application, opts FilterOptions) []Application {
	var selected []Application
	for _, app := range apps {
		if reason := skipReason(app, opts); reason != "" {
			slog.Debug("Skipping application", "app", app.Metadata.Name, "reason", reason)
			continue
		}
		selected = append(selected, app)
	}

	slices.SortFunc(selected, func(a, b Application) int {
		return strings.Compare(a.Metadata.Name, b.Metadata.Name)
	})

	if len(selected) == 0 {
		slog.Info("No apps returned", "candidates", len(apps), "repository", opts.Repository)
	} else {
		slog.Debug("Selected applications", "count", len(selected), "candidates", len(apps))
	}
	return selected
}

// skipReason explains why an application is not diffed, or returns empty when it is
func skipReason(app Application, opts FilterOptions) string {
	source := app.Spec.Source
	switch {
	case source == nil:
		return "no single source"
	case !matchesRepository(source.RepoURL, opts.Repository):
		return "different repository"
	case source.Path == "":
		return "no source path"
	case !slices.Contains(opts.TargetRevisions, normalizeRevision(source.TargetRevision)):
		return "untracked target revision"
	case slices.Contains(opts.Exclude, app.Metadata.Name):
		return "excluded"
	case opts.ChangedFiles != nil && !touchesPath(source.Path, opts.ChangedFiles):
		return "no changed files"
	}
	return ""
}

// matchesRepository compares an ArgoCD repo URL (https or ssh form) against "owner/repo"
func matchesRepository(repoURL, repository string) bool {
	if repository == "" {
		return true
	}

	normalized := strings.ToLower(strings.TrimSuffix(strings.TrimSuffix(repoURL, "/"), ".git"))
	want := strings.ToLower(strings.Trim(repository, "/"))

	return strings.HasSuffix(normalized, "/"+want) || strings.HasSuffix(normalized, ":"+want)
}

// normalizeRevision maps the empty revision to HEAD, as ArgoCD does
func normalizeRevision(revision string) string {
	if revision == "" {
		return "HEAD"
	}
	return revision
}

func touchesPath(path string, files []string) bool {
	dir := strings.Trim(path, "/")
	if dir == "" || dir == "." {
		return len(files) > 0
	}

	for _, file := range files {
		if file == dir || strings.HasPrefix(file, dir+"/") {
			return true
		}
	}
	return false
}
