package argocd

import (
	"regexp"

	"argocd-diff-preview/internal/diff"
)

// RevisionChange is a child Application whose targetRevision changes in a parent's diff
type RevisionChange struct {
	Parent   string
	Child    string
	Revision string
}

var (
	// Matches the resource header of a child Application, e.g. "===== argoproj.io/Application argocd/web ======"
	childApplicationHeader = regexp.MustCompile(`^===== argoproj\.io/Application [^/\s]*/(\S+) =+`)
	// Matches the new targetRevision line in normal or unified diff output
	newTargetRevision = regexp.MustCompile(`(?m)^[>+]\s+targetRevision:\s*['"]?([^'"\s]+)['"]?\s*$`)
)

// FindRevisionChanges returns the child applications whose target revision is
// changed by the parent's diff, in the order they appear
func FindRevisionChanges(parent, diffText string) []RevisionChange {
	var changes []RevisionChange
	for resource := range diff.Resources(diffText) {
		header := childApplicationHeader.FindStringSubmatch(resource)
		if header == nil {
			continue
		}

		revision := newTargetRevision.FindStringSubmatch(resource)
		if revision == nil {
			continue
		}

		changes = append(changes, RevisionChange{
			Parent:   parent,
			Child:    header[1],
			Revision: revision[1],
		})
	}
	return changes
}
