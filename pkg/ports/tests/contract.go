package tests

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/ports"
)

// ViewLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ViewLoader.
// expected maps each view ID to the kind name of its root element.
func ViewLoaderContractTest(t *testing.T, loader ports.ViewLoader, expected map[string]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test Load (Success)
	t.Run("Load_Success", func(t *testing.T) {
		for id, kind := range expected {
			el, err := loader.Load(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error loading view %s: %v", id, err)
			}
			if el.Kind.Name() != kind {
				t.Errorf("root kind mismatch for %s. got %q, want %q", id, el.Kind.Name(), kind)
			}
		}
	})

	// 2. Test Load (NotFound)
	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-view")
		if err == nil {
			t.Error("expected error for non-existent view, got nil")
		}
	})

	// 3. Test List
	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing views: %v", err)
		}

		if len(ids) != len(expected) {
			t.Errorf("expected %d views, got %d", len(expected), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}

		for id := range expected {
			if !lookup[id] {
				t.Errorf("view %s missing from list", id)
			}
		}
	})
}
