package domain

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Snapshot is a serializable picture of a committed host subtree.
type Snapshot struct {
	Kind     string         `json:"kind"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Text     string         `json:"text,omitempty"`
	Events   []string       `json:"events,omitempty"`
	Children []*Snapshot    `json:"children,omitempty"`
}

// Walk visits s and its descendants depth-first.
func (s *Snapshot) Walk(fn func(*Snapshot)) {
	if s == nil {
		return
	}
	fn(s)
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// TextContent concatenates the text of every text node under s.
func (s *Snapshot) TextContent() string {
	var out []byte
	s.Walk(func(n *Snapshot) {
		if n.Kind == TextTag {
			out = append(out, n.Text...)
		}
	})
	return string(out)
}

// Clone returns a deep copy of s. Attribute values are copied shallowly.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{Kind: s.Kind, Text: s.Text}
	if s.Attrs != nil {
		out.Attrs = make(map[string]any, len(s.Attrs))
		for k, v := range s.Attrs {
			out.Attrs[k] = v
		}
	}
	if s.Events != nil {
		out.Events = append([]string(nil), s.Events...)
	}
	for _, c := range s.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}

// Markup prints s as HTML-like markup with sorted attributes. Listeners are
// not printed. A RootTag snapshot prints only its children.
func (s *Snapshot) Markup() string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	if s.Kind == RootTag {
		for _, c := range s.Children {
			c.writeMarkup(&sb)
		}
		return sb.String()
	}
	s.writeMarkup(&sb)
	return sb.String()
}

func (s *Snapshot) writeMarkup(sb *strings.Builder) {
	if s.Kind == TextTag {
		sb.WriteString(html.EscapeString(s.Text))
		return
	}
	sb.WriteString("<" + s.Kind)
	keys := make([]string, 0, len(s.Attrs))
	for k := range s.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, " %s=%q", k, fmt.Sprint(s.Attrs[k]))
	}
	sb.WriteString(">")
	for _, c := range s.Children {
		c.writeMarkup(sb)
	}
	sb.WriteString("</" + s.Kind + ">")
}
