package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	snap := &domain.Snapshot{Kind: "div", Attrs: map[string]any{"id": "a"}}
	require.NoError(t, store.Save(ctx, "c1", snap))
	snap.Attrs["id"] = "mutated"

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.Attrs["id"])

	loaded.Attrs["id"] = "mutated again"
	again, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Attrs["id"])
}
