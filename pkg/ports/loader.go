package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// ViewLoader defines how element trees are retrieved by ID.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type ViewLoader interface {
	// Load resolves the view with the given ID into an element tree.
	Load(ctx context.Context, id string) (domain.Element, error)

	// List returns the IDs of every view available.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the ID of each changed document.
	Watch(ctx context.Context) (<-chan string, error)
}
