package argocd

import (
	"testing"
)

func newApp(name, repoURL, path, revision string) Application {
	return Application{
		Metadata: ApplicationMetadata{Name: name},
		Spec: ApplicationSpec{Source: &ApplicationSource{
			RepoURL:        repoURL,
			Path:           path,
			TargetRevision: revision,
		}},
	}
}

func names(apps []Application) []string {
	result := make([]string, len(apps))
	for i, a := range apps {
		result[i] = a.Metadata.Name
	}
	return result
}

func TestFilterApplications(t *testing.T) {
	apps := []Application{
		newApp("zeta", "https://github.com/org/deployments", "apps/zeta", "main"),
		newApp("alpha", "https://github.com/Org/Deployments.git", "apps/alpha", ""),
		newApp("ssh", "git@github.com:org/deployments.git", "apps/ssh", "HEAD"),
		newApp("other-repo", "https://github.com/org/other", "apps/x", "main"),
		newApp("suffix-repo", "https://github.com/org/my-deployments", "apps/y", "main"),
		newApp("feature", "https://github.com/org/deployments", "apps/feature", "feature-branch"),
		newApp("no-path", "https://github.com/org/deployments", "", "main"),
		newApp("excluded", "https://github.com/org/deployments", "apps/excluded", "main"),
		{Metadata: ApplicationMetadata{Name: "multi-source"}},
	}

	tests := []struct {
		name     string
		opts     FilterOptions
		expected []string
	}{
		{
			name: "repository, revision, path and exclusion",
			opts: FilterOptions{
				Repository:      "org/deployments",
				TargetRevisions: []string{"HEAD", "main", "master"},
				Exclude:         []string{"excluded"},
			},
			expected: []string{"alpha", "ssh", "zeta"},
		},
		{
			name: "changed files restrict to touched paths",
			opts: FilterOptions{
				Repository:      "org/deployments",
				TargetRevisions: []string{"HEAD", "main"},
				ChangedFiles:    []string{"apps/zeta/values.yaml", "apps/alphabet/x.yaml", "README.md"},
			},
			expected: []string{"zeta"},
		},
		{
			name: "empty changed file list selects nothing",
			opts: FilterOptions{
				Repository:      "org/deployments",
				TargetRevisions: []string{"HEAD", "main"},
				ChangedFiles:    []string{},
			},
			expected: nil,
		},
		{
			name: "no repository accepts every repository",
			opts: FilterOptions{
				TargetRevisions: []string{"main"},
			},
			expected: []string{"excluded", "other-repo", "suffix-repo", "zeta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := names(FilterApplications(apps, tt.opts))
			if len(result) != len(tt.expected) {
				t.Fatalf("FilterApplications() = %v, expected %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("FilterApplications() = %v, expected %v", result, tt.expected)
					break
				}
			}
		})
	}
}

func TestTouchesPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		files    []string
		expected bool
	}{
		{"file inside path", "apps/web", []string{"apps/web/deploy.yaml"}, true},
		{"path with slashes", "/apps/web/", []string{"apps/web/deploy.yaml"}, true},
		{"sibling prefix is not inside", "apps/web", []string{"apps/web-v2/deploy.yaml"}, false},
		{"repository root", ".", []string{"anything.yaml"}, true},
		{"no files", "apps/web", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := touchesPath(tt.path, tt.files); result != tt.expected {
				t.Errorf("touchesPath(%q) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}
