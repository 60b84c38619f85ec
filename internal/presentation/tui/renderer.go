package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/charmbracelet/glamour"
)

// NewMarkdownRenderer returns a function that renders markdown using glamour.
func NewMarkdownRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// NewRenderer renders committed trees for the interactive runner.
func NewRenderer() runner.ContentRenderer {
	render := NewMarkdownRenderer()
	return func(s *domain.Snapshot) (string, error) {
		return render(Markdown(s))
	}
}

// ReportMarkdown summarizes a commit as a Markdown table of its effects.
// Updates that changed nothing are left out.
func ReportMarkdown(report domain.CommitReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Pass %d**: %d units, %d placed, %d patched, %d removed (%s)\n\n",
		report.Pass, report.Units,
		report.Count(domain.EffectPlacement), report.Patched(), report.Count(domain.EffectDeletion),
		report.Duration)

	rows := 0
	for _, e := range report.Effects {
		if e.Tag == domain.EffectUpdate && len(e.Changed) == 0 {
			continue
		}
		if rows == 0 {
			sb.WriteString("| Effect | Kind | Path | Changed |\n|---|---|---|---|\n")
		}
		rows++
		fmt.Fprintf(&sb, "| %s | %s | `%s` | %s |\n", e.Tag, e.Kind, e.Path, strings.Join(e.Changed, ", "))
	}
	if rows == 0 {
		sb.WriteString("_No host changes._\n")
	}
	return sb.String()
}
