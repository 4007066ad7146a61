package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
	"time"
)

// Marker is the hidden tag that identifies comments written by this tool
const Marker = "<!-- argocd-diff-preview -->"

//go:embed header_template.md
var headerTemplateText string

//go:embed legend_template.md
var legendText string

var headerTemplate = template.Must(
	template.New("header").Funcs(templateFuncs()).Parse(headerTemplateText),
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"marker":     func() string { return Marker },
		"commitLink": commitLink,
		"formatTime": formatTime,
	}
}

// Template helper functions

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func commitLink(sha, url string) string {
	if url == "" {
		return fmt.Sprintf("`%s`", shortSHA(sha))
	}
	return fmt.Sprintf("[`%s`](%s)", shortSHA(sha), url)
}

func formatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}

// HeaderData holds the values shown at the top of every comment
type HeaderData struct {
	CommitSHA string
	CommitURL string // Link target for the commit; empty renders the SHA without a link
	UpdatedAt time.Time
	Location  *time.Location // Nil means UTC
}

// Header renders the comment header
func Header(data HeaderData) (string, error) {
	var buf bytes.Buffer
	if err := headerTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute header template: %w", err)
	}
	return buf.String(), nil
}

// Legend returns the sync status legend appended to every comment
func Legend() string {
	return legendText
}
