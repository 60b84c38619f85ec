package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	containerID := "contract-test-container-" + time.Now().Format("20060102150405")

	sample := func() *domain.Snapshot {
		return &domain.Snapshot{
			Kind:  "div",
			Attrs: map[string]any{"id": "root", "title": "foo"},
			Children: []*domain.Snapshot{
				{Kind: "h1", Children: []*domain.Snapshot{{Kind: domain.TextTag, Text: "Hello"}}},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, containerID, sample())
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, containerID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "div", loaded.Kind)
		assert.Equal(t, "root", loaded.Attrs["id"])
		require.Len(t, loaded.Children, 1)
		assert.Equal(t, "Hello", loaded.TextContent())
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		updated := sample()
		updated.Attrs["title"] = "bar"
		require.NoError(t, store.Save(ctx, containerID, updated))

		loaded, err := store.Load(ctx, containerID)
		require.NoError(t, err)
		assert.Equal(t, "bar", loaded.Attrs["title"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+containerID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, containerID, sample()))

		err := store.Delete(ctx, containerID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, containerID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := containerID + "-1"
		id2 := containerID + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, sample())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
