package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Loader implements ports.ViewLoader using an in-memory map of element trees.
type Loader struct {
	mu    sync.RWMutex
	views map[string]domain.Element
}

// NewLoader creates a loader serving the given views.
func NewLoader(views map[string]domain.Element) *Loader {
	l := &Loader{views: make(map[string]domain.Element, len(views))}
	for id, el := range views {
		l.views[id] = el
	}
	return l
}

// Set adds or replaces a view.
func (l *Loader) Set(id string, el domain.Element) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.views[id] = el
}

// Load returns the element tree of a view.
func (l *Loader) Load(ctx context.Context, id string) (domain.Element, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	el, ok := l.views[id]
	if !ok {
		return domain.Element{}, fmt.Errorf("view not found: %s", id)
	}
	return el, nil
}

// List returns all view IDs in deterministic order.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.views))
	for id := range l.views {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
