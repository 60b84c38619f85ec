package domain

import "fmt"

// Element is an immutable description of desired UI content.
// Elements are created by Build and never mutated afterwards; a new render
// replaces them wholesale.
type Element struct {
	Kind     Kind
	Props    Props
	Children []Element
}

// Build converts a (kind, props, children) triple into an Element.
//
// Children may be Elements, slices of Elements or of arbitrary values (spliced
// in place), nil (skipped) or any scalar, which is wrapped into a text element.
// The returned element carries the normalized children both in Children and
// under props["children"]. The given props map is copied, never retained.
func Build(kind Kind, props Props, children ...any) Element {
	normalized := make([]Element, 0, len(children))
	for _, child := range children {
		normalized = appendChild(normalized, child)
	}

	merged := make(Props, len(props)+1)
	for k, v := range props {
		merged[k] = v
	}
	merged[PropChildren] = normalized

	return Element{Kind: kind, Props: merged, Children: normalized}
}

func appendChild(dst []Element, child any) []Element {
	switch c := child.(type) {
	case nil:
		return dst
	case Element:
		return append(dst, c)
	case *Element:
		if c == nil {
			return dst
		}
		return append(dst, *c)
	case []Element:
		return append(dst, c...)
	case []any:
		for _, inner := range c {
			dst = appendChild(dst, inner)
		}
		return dst
	default:
		return append(dst, Text(c))
	}
}

// Text wraps a scalar into a text element with a single nodeValue prop.
func Text(v any) Element {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(v)
	}
	return Element{
		Kind: TextKind,
		Props: Props{
			PropNodeValue: s,
			PropChildren:  []Element{},
		},
		Children: []Element{},
	}
}

// H builds a host element.
func H(tag string, props Props, children ...any) Element {
	return Build(Host(tag), props, children...)
}

// C builds a component element.
func C(c *Component, props Props, children ...any) Element {
	return Build(ComponentKind(c), props, children...)
}

// IsZero reports whether el is the zero Element, which components return to
// render nothing.
func (el Element) IsZero() bool {
	return el.Kind == (Kind{}) && el.Props == nil && el.Children == nil
}
