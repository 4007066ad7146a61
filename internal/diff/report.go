package diff

import (
	"log/slog"
)

// Build renders every record and packs the blocks into comment bodies.
// Progress and size problems are reported to log; a nil log discards them.
func Build(records []DiffRecord, layout Layout, log *slog.Logger) []string {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if len(records) == 0 {
		log.Info("No application diffs to report")
		return nil
	}

	blocks := make([]RenderedAppBlock, 0, len(records))
	for _, rec := range records {
		block := RenderAppBlock(rec, layout)
		switch {
		case block.Oversized:
			log.Warn("Application report exceeds comment size limit",
				"app", block.App, "length", block.Length, "limit", layout.Limit, "truncated", block.Truncated)
		case block.Truncated:
			log.Info("Truncated application diff", "app", block.App, "shown", block.Shown, "total", block.Total)
		default:
			log.Debug("Rendered application diff", "app", block.App, "length", block.Length)
		}
		blocks = append(blocks, block)
	}

	bodies := Pack(blocks, layout)
	for i, body := range bodies {
		if len(body) > layout.Limit {
			log.Warn("Comment body exceeds size limit", "part", i+1, "length", len(body), "limit", layout.Limit)
		}
	}

	log.Debug("Packed application reports", "apps", len(blocks), "comments", len(bodies))
	return bodies
}
