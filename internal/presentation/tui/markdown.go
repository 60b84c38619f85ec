package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Markdown prints a committed tree as Markdown, so the terminal renderer can
// style it. Interactive nodes show their id, which is what commands target:
// a button with id "inc" prints as [+](#inc).
func Markdown(s *domain.Snapshot) string {
	var sb strings.Builder
	block(&sb, s)
	out := strings.TrimSpace(sb.String())
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return out + "\n"
}

func block(sb *strings.Builder, s *domain.Snapshot) {
	if s == nil {
		return
	}
	switch s.Kind {
	case domain.TextTag:
		sb.WriteString(escapeMarkdown(s.Text))
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(s.Kind[1] - '0')
		fmt.Fprintf(sb, "\n%s %s\n\n", strings.Repeat("#", level), inlineOf(s))
	case "p":
		fmt.Fprintf(sb, "\n%s\n\n", inlineOf(s))
	case "ul", "ol":
		sb.WriteString("\n")
		n := 0
		for _, c := range s.Children {
			if c.Kind != "li" {
				continue
			}
			n++
			bullet := "-"
			if s.Kind == "ol" {
				bullet = fmt.Sprintf("%d.", n)
			}
			fmt.Fprintf(sb, "%s %s\n", bullet, inlineOf(c))
		}
		sb.WriteString("\n")
	case "hr":
		sb.WriteString("\n---\n\n")
	case "pre":
		fmt.Fprintf(sb, "\n```\n%s\n```\n\n", s.TextContent())
	case "blockquote":
		fmt.Fprintf(sb, "\n> %s\n\n", inlineOf(s))
	case domain.RootTag, "div", "main", "section", "article", "header", "footer", "nav", "form":
		for _, c := range s.Children {
			block(sb, c)
		}
	default:
		sb.WriteString(inline(s))
	}
}

func inlineOf(s *domain.Snapshot) string {
	var sb strings.Builder
	for _, c := range s.Children {
		sb.WriteString(inline(c))
	}
	return strings.TrimSpace(sb.String())
}

func inline(s *domain.Snapshot) string {
	switch s.Kind {
	case domain.TextTag:
		return escapeMarkdown(s.Text)
	case "strong", "b":
		return "**" + inlineOf(s) + "**"
	case "em", "i":
		return "*" + inlineOf(s) + "*"
	case "code":
		return "`" + s.TextContent() + "`"
	case "br":
		return "  \n"
	case "a":
		return fmt.Sprintf("[%s](%s)", inlineOf(s), attr(s, "href"))
	case "button":
		return fmt.Sprintf("[%s](#%s)", inlineOf(s), attr(s, "id"))
	case "input", "textarea":
		value := attr(s, "value")
		if value == "" {
			value = attr(s, "placeholder")
		}
		return fmt.Sprintf("`%s: %s`", attr(s, "id"), value)
	}
	return inlineOf(s)
}

func attr(s *domain.Snapshot, name string) string {
	v, ok := s.Attrs[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
