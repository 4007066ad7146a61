package diff

import (
	"encoding/json"
)

// SyncStatus is the ArgoCD sync state of an application
type SyncStatus string

const (
	SyncStatusSynced    SyncStatus = "Synced"
	SyncStatusOutOfSync SyncStatus = "OutOfSync"
	SyncStatusUnknown   SyncStatus = "Unknown"
)

// AppRef identifies an application for display and for the local reproduction command
type AppRef struct {
	Name       string
	SourcePath string // Empty when the application has no local source path
	Revision   string // Git revision diffed against instead of the local source, if any
	SyncStatus SyncStatus
}

// DiffError describes a failed diff generation. It may accompany a partial diff.
type DiffError struct {
	Stderr string
	Err    error
}

// DiffRecord is the diff result of a single application
type DiffRecord struct {
	App   AppRef
	Diff  string     // Empty when no diff was produced
	Error *DiffError // Nil when generation succeeded
}

// RenderedAppBlock is the final report section of one application
type RenderedAppBlock struct {
	App       string
	Text      string
	Length    int
	Shown     int  // Resources shown when Truncated
	Total     int  // Resources in the full diff when Truncated
	Truncated bool // A truncation notice was appended
	Oversized bool // The block cannot fit the budget even with zero resources
}

// Layout holds the global comment framing and size budget
type Layout struct {
	Header    string
	Legend    string
	Limit     int
	RenderURI string
}

// overhead is the fixed cost of every comment body: header, widest part marker and legend
func (l Layout) overhead() int {
	return len(l.Header) + len(partMarker(maxParts, maxParts)) + len(l.Legend)
}

// fits reports whether a block of the given length fits a comment body on its own
func (l Layout) fits(blockLen int) bool {
	return l.overhead()+blockLen <= l.Limit
}

// serializeError renders the underlying error as indented JSON.
// Errors without exported fields fall back to their message.
func serializeError(err error) string {
	if err == nil {
		return "null"
	}

	data, jsonErr := json.MarshalIndent(err, "", "  ")
	if jsonErr != nil || string(data) == "{}" {
		data, _ = json.MarshalIndent(map[string]string{"message": err.Error()}, "", "  ")
	}
	return string(data)
}
