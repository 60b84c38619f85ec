package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// ComponentResolver finds components by name. *registry.Registry implements it.
type ComponentResolver interface {
	Component(name string) (*domain.Component, bool)
}

// ViewResolver returns the tree document of another view.
type ViewResolver func(id string) (*Node, error)

// Converter turns nodes into elements.
type Converter struct {
	components ComponentResolver
	views      ViewResolver
}

// ConvertOption configures a Converter.
type ConvertOption func(*Converter)

// WithComponents resolves component nodes.
func WithComponents(r ComponentResolver) ConvertOption {
	return func(c *Converter) {
		c.components = r
	}
}

// WithViews resolves view references.
func WithViews(r ViewResolver) ConvertOption {
	return func(c *Converter) {
		c.views = r
	}
}

// NewConverter creates a converter. Without resolvers, component and view
// nodes are errors.
func NewConverter(opts ...ConvertOption) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToElement converts n into an element tree.
func ToElement(n *Node, opts ...ConvertOption) (domain.Element, error) {
	return NewConverter(opts...).Convert(n)
}

// Convert converts n into an element tree. View references are inlined;
// a view that (directly or not) includes itself is an error.
func (c *Converter) Convert(n *Node) (domain.Element, error) {
	return c.convert(n, "", make(map[string]bool))
}

func (c *Converter) convert(n *Node, path string, visited map[string]bool) (domain.Element, error) {
	if n == nil {
		return domain.Element{}, fmt.Errorf("%w: nil node at %q", domain.ErrInvalidTree, path)
	}
	kind, count := n.variant()
	if count != 1 {
		return domain.Element{}, fmt.Errorf("%w: node at %q must have exactly one of tag, component, view or text (has %d)",
			domain.ErrInvalidTree, path, count)
	}

	switch kind {
	case "text":
		if len(n.Children) > 0 || len(n.Props) > 0 {
			return domain.Element{}, fmt.Errorf("%w: text node at %q cannot have props or children", domain.ErrInvalidTree, path)
		}
		return domain.Text(n.Text), nil

	case "view":
		return c.include(n.View, path, visited)
	}

	for name := range n.Props {
		if _, isEvent := domain.EventName(name); isEvent {
			return domain.Element{}, fmt.Errorf("%w: prop %q at %q: listeners cannot be declared in documents",
				domain.ErrInvalidTree, name, path)
		}
	}

	children := make([]any, 0, len(n.Children))
	for i, child := range n.Children {
		el, err := c.convert(child, fmt.Sprintf("%s/%d", path, i), visited)
		if err != nil {
			return domain.Element{}, err
		}
		children = append(children, el)
	}

	if kind == "tag" {
		return domain.H(n.Tag, n.Props, children...), nil
	}

	if c.components == nil {
		return domain.Element{}, fmt.Errorf("%w: component %q at %q: no component registry", domain.ErrInvalidTree, n.Component, path)
	}
	comp, ok := c.components.Component(n.Component)
	if !ok {
		return domain.Element{}, fmt.Errorf("%w: unknown component %q at %q", domain.ErrInvalidTree, n.Component, path)
	}
	return domain.C(comp, n.Props, children...), nil
}

func (c *Converter) include(id, path string, visited map[string]bool) (domain.Element, error) {
	if c.views == nil {
		return domain.Element{}, fmt.Errorf("%w: view %q at %q: no view resolver", domain.ErrInvalidTree, id, path)
	}
	if visited[id] {
		return domain.Element{}, fmt.Errorf("%w: cycle detected in view includes: %s", domain.ErrInvalidTree, id)
	}

	node, err := c.views(id)
	if err != nil {
		return domain.Element{}, fmt.Errorf("failed to load included view '%s': %w", id, err)
	}

	// DFS cycle detection: mark, recurse, unmark.
	visited[id] = true
	defer delete(visited, id)
	return c.convert(node, path+"@"+id, visited)
}
