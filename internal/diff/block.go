package diff

import (
	"fmt"
	"strings"
)

const sectionDivider = "\n---\n"

// RenderAppBlock renders the report section of one application.
// When the full diff does not fit the layout budget, the longest prefix of
// whole resources that fits is kept and a truncation notice is appended.
func RenderAppBlock(rec DiffRecord, layout Layout) RenderedAppBlock {
	prefix := renderAppHeader(rec.App, rec.Error != nil, layout.RenderURI) + renderErrorSection(rec.Error)

	if rec.Diff == "" {
		return newBlock(rec.App.Name, prefix+sectionDivider, layout)
	}

	full := prefix + encloseDiff(rec.Diff) + sectionDivider
	if layout.fits(len(full)) {
		return newBlock(rec.App.Name, full, layout)
	}

	resources := SplitResources(rec.Diff)
	total := len(resources)
	truncated := func(shown string, count int) string {
		return prefix + encloseDiff(shown) + truncationNotice(rec.App, count, total) + sectionDivider
	}

	type kept struct {
		text  string
		count int
	}
	result := foldWhile(resources, kept{}, func(acc kept, resource string) (kept, bool) {
		next := kept{text: acc.text + resource, count: acc.count + 1}
		return next, layout.fits(len(truncated(next.text, next.count)))
	})

	block := newBlock(rec.App.Name, truncated(result.text, result.count), layout)
	block.Truncated = true
	block.Shown = result.count
	block.Total = total
	return block
}

func newBlock(app, text string, layout Layout) RenderedAppBlock {
	return RenderedAppBlock{
		App:       app,
		Text:      text,
		Length:    len(text),
		Oversized: !layout.fits(len(text)),
	}
}

func renderAppHeader(app AppRef, failed bool, renderURI string) string {
	generation := "Success 🟢"
	if failed {
		generation = "Error 🛑"
	}

	// Unknown sync states are reported as out of sync
	syncBadge := "Out of Sync ⚠️"
	if app.SyncStatus == SyncStatusSynced {
		syncBadge = "Synced ✅"
	}

	appURL := fmt.Sprintf("%s/applications/%s", strings.TrimSuffix(renderURI, "/"), app.Name)
	return fmt.Sprintf("\nApp: [`%s`](%s)\nYAML generation: %s\nApp sync status: %s\n", app.Name, appURL, generation, syncBadge)
}

func renderErrorSection(diffErr *DiffError) string {
	if diffErr == nil {
		return ""
	}
	return fmt.Sprintf("\n**`stderr:`**\n```\n%s\n```\n\n**`command:`**\n```json\n%s\n```\n",
		strings.TrimRight(diffErr.Stderr, "\n"), serializeError(diffErr.Err))
}

// encloseDiff wraps diff text in a collapsible, diff-highlighted fence
func encloseDiff(text string) string {
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return "\n<details>\n\n```diff\n" + text + "```\n\n</details>\n"
}

func truncationNotice(app AppRef, shown, total int) string {
	command := "argocd app diff " + app.Name
	switch {
	case app.Revision != "":
		command += " --revision " + app.Revision
	case app.SourcePath != "":
		command += " --local=" + app.SourcePath
	}
	return fmt.Sprintf("\n> [!WARNING]\n> Diff truncated: showing %d/%d resources. Run `%s` locally to see the full diff.\n",
		shown, total, command)
}
