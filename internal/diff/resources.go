package diff

import (
	"iter"
	"slices"
	"strings"
)

// resourceMarker starts every resource section printed by `argocd app diff`,
// e.g. "===== apps/Deployment default/web ======"
const resourceMarker = "===== "

// Resources yields the resource sections of a diff in order.
// A marker line belongs to the section it starts; text before the first
// marker forms its own section. Concatenating the sections gives back the input.
func Resources(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for _, pos := range markerOffsets(text) {
			if pos > start && !yield(text[start:pos]) {
				return
			}
			start = pos
		}
		if start < len(text) {
			yield(text[start:])
		}
	}
}

// SplitResources returns all resource sections of a diff
func SplitResources(text string) []string {
	return slices.Collect(Resources(text))
}

// markerOffsets returns the byte offsets of every line that starts with the resource marker
func markerOffsets(text string) []int {
	var offsets []int
	for lineStart := 0; lineStart < len(text); {
		if strings.HasPrefix(text[lineStart:], resourceMarker) {
			offsets = append(offsets, lineStart)
		}
		next := strings.IndexByte(text[lineStart:], '\n')
		if next == -1 {
			break
		}
		lineStart += next + 1
	}
	return offsets
}
