package shared

import (
	"fmt"
	"regexp"
)

// RepositoryRegex matches an "owner/repo" repository name
var RepositoryRegex = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)

// ParseRepository extracts owner and repo from an "owner/repo" name
func ParseRepository(repository string) (owner, repo string, err error) {
	matches := RepositoryRegex.FindStringSubmatch(repository)
	if len(matches) != 3 {
		return "", "", fmt.Errorf("invalid GitHub repository format (expected owner/repo): %s", repository)
	}
	return matches[1], matches[2], nil
}

// CommitURL returns the web URL of a commit
func CommitURL(owner, repo, sha string) string {
	return fmt.Sprintf("https://github.com/%s/%s/commit/%s", owner, repo, sha)
}
