package dsl

import (
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
)

// Builder collects named views.
type Builder struct {
	views map[string]*Node
}

// New creates a new view builder.
func New() *Builder {
	return &Builder{
		views: make(map[string]*Node),
	}
}

// Add registers a view. Adding an existing ID replaces it.
func (b *Builder) Add(id string, root *Node) *Builder {
	b.views[id] = root
	return b
}

// Build converts every view (resolving includes between them) into a MemoryLoader.
func (b *Builder) Build(components ComponentResolver) (*memory.Loader, error) {
	conv := NewConverter(
		WithComponents(components),
		WithViews(func(id string) (*Node, error) {
			n, ok := b.views[id]
			if !ok {
				return nil, fmt.Errorf("view not found: %s", id)
			}
			return n, nil
		}),
	)

	ids := make([]string, 0, len(b.views))
	for id := range b.views {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	elements := make(map[string]domain.Element, len(ids))
	for _, id := range ids {
		el, err := conv.Convert(b.views[id])
		if err != nil {
			return nil, fmt.Errorf("failed to build view %s: %w", id, err)
		}
		elements[id] = el
	}
	return memory.NewLoader(elements), nil
}
