package diff

import (
	"fmt"
	"strings"
)

// maxParts bounds the width of the part marker reserved in every size check.
// Reports split into more parts get a wider marker, so their bodies may exceed
// the limit; Build logs a warning for every such body.
const maxParts = 999

func partMarker(part, total int) string {
	return fmt.Sprintf("\n_Part %d of %d_\n", part, total)
}

// packState is the running state of the packer: the body being filled and the finished ones
type packState struct {
	open    []string
	openLen int
	closed  [][]string
}

// Pack greedily packs rendered blocks, in order, into comment bodies of
// header + blocks + legend. A block starts a new body only when it does not
// fit the current one; a lone block is always accepted. When more than one
// body results, each gets a "Part i of n" marker right after the header.
func Pack(blocks []RenderedAppBlock, layout Layout) []string {
	if len(blocks) == 0 {
		return nil
	}

	final := fold(blocks, packState{}, func(s packState, block RenderedAppBlock) packState {
		if len(s.open) > 0 && !layout.fits(s.openLen+len(block.Text)) {
			return packState{
				open:    []string{block.Text},
				openLen: len(block.Text),
				closed:  append(s.closed, s.open),
			}
		}
		return packState{
			open:    append(s.open, block.Text),
			openLen: s.openLen + len(block.Text),
			closed:  s.closed,
		}
	})
	groups := append(final.closed, final.open)

	bodies := make([]string, len(groups))
	for i, group := range groups {
		marker := ""
		if len(groups) > 1 {
			marker = partMarker(i+1, len(groups))
		}
		bodies[i] = layout.Header + marker + strings.Join(group, "") + layout.Legend
	}
	return bodies
}
