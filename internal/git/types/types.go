package types

// Comment is a pull/merge request comment, platform-agnostic
type Comment struct {
	ID     int64  // REST identifier used to edit or delete the comment
	NodeID string // GraphQL node identifier (GitHub only)
	Body   string
}
