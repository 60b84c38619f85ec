package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
)

const maxLabel = 24

// GraphOverlay marks the fibers touched by a commit.
type GraphOverlay struct {
	Placed  []string
	Updated []string
}

// OverlayFromReport collects effect paths from a commit report. Updates that
// changed no attribute are not marked.
func OverlayFromReport(report domain.CommitReport) *GraphOverlay {
	o := &GraphOverlay{}
	for _, e := range report.Effects {
		switch {
		case e.Tag == domain.EffectPlacement:
			o.Placed = append(o.Placed, e.Path)
		case e.Tag == domain.EffectUpdate && len(e.Changed) > 0:
			o.Updated = append(o.Updated, e.Path)
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the fiber tree under root.
// It applies semantic styling:
// - Root: ((Circle))
// - Component: [[Subroutine]]
// - Text: [/Parallelogram/]
// - Host: [Rectangle]
// It also applies overlay styles (Placed/Updated) if provided.
func GenerateMermaid(root *runtime.Fiber, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if root == nil {
		return sb.String()
	}

	var walk func(f *runtime.Fiber)
	walk = func(f *runtime.Fiber) {
		id := nodeID(f)
		opener, closer := "[", "]"
		switch f.Kind.Tag() {
		case domain.KindRoot:
			opener, closer = "((", "))"
		case domain.KindComponent:
			opener, closer = "[[", "]]"
		case domain.KindText:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label(f), closer)

		for _, c := range f.Children() {
			fmt.Fprintf(&sb, "    %s --> %s\n", id, nodeID(c))
		}
		for _, c := range f.Children() {
			walk(c)
		}
	}
	walk(root)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef placed fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef updated fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, overlay.Placed, "placed")
		writeClass(&sb, overlay.Updated, "updated")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, paths []string, class string) {
	seen := make(map[string]bool)
	for _, p := range paths {
		id := sanitizeMermaidID(p)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		fmt.Fprintf(sb, "    class %s %s;\n", id, class)
	}
}

func nodeID(f *runtime.Fiber) string {
	if f.Kind.Tag() == domain.KindRoot {
		return "root"
	}
	return sanitizeMermaidID(f.Path())
}

func label(f *runtime.Fiber) string {
	switch f.Kind.Tag() {
	case domain.KindText:
		return escape(truncate(fmt.Sprint(f.Props[domain.PropNodeValue])))
	case domain.KindHost:
		if id, ok := f.Props["id"].(string); ok && id != "" {
			return escape(fmt.Sprintf("%s#%s", f.Kind.Name(), id))
		}
	}
	return escape(f.Kind.Name())
}

// truncate caps s at maxLabel runes, the ellipsis included.
func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return string(r[:maxLabel-1]) + "…"
}

// escape keeps labels inside their quotes.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(
		".", "_", "-", "_", "/", "_", "\\", "_",
		"[", "_", "]", "", "#", "_", " ", "_",
	)
	return r.Replace(id)
}
