package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Registry maps component names to component references, so tree documents
// (YAML, JSON, Markdown front matter) can name the components they use.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*domain.Component
}

// NewRegistry creates a registry holding the given components.
func NewRegistry(components ...*domain.Component) *Registry {
	r := &Registry{
		components: make(map[string]*domain.Component),
	}
	for _, c := range components {
		r.Register(c)
	}
	return r
}

// Register adds a component under its Name.
// If a component with the same name exists, it is overwritten.
func (r *Registry) Register(c *domain.Component) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[c.Name] = c
}

// Component looks a component up by name.
func (r *Registry) Component(name string) (*domain.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// MustComponent is Component for names known to be registered.
func (r *Registry) MustComponent(name string) *domain.Component {
	c, ok := r.Component(name)
	if !ok {
		panic(fmt.Sprintf("component not registered: %s", name))
	}
	return c
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
