package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// SnapshotStore defines the interface for persisting committed host trees.
// This allows a container to be inspected (or re-served) after the process that
// rendered it is gone.
type SnapshotStore interface {
	// Save persists the snapshot for a given container ID.
	Save(ctx context.Context, containerID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given container ID.
	// Returns domain.ErrSnapshotNotFound if the container has none.
	Load(ctx context.Context, containerID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given container ID.
	Delete(ctx context.Context, containerID string) error

	// List returns the IDs of every stored container.
	List(ctx context.Context) ([]string, error)
}
