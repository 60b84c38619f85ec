package ports

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HostFactory returns a fresh host and the container node renders are mounted into.
type HostFactory func(t *testing.T) (Host, domain.NodeRef)

// RunHostContract verifies that a Host implementation behaves the way the committer
// expects. Optional capabilities (Snapshotter, Dispatcher, NodeInserter) are
// exercised when the host implements them.
func RunHostContract(t *testing.T, factory HostFactory) {
	t.Run("Create, Set and Append", func(t *testing.T) {
		host, container := factory(t)

		h1, err := host.CreateNode("h1")
		require.NoError(t, err)
		require.NoError(t, host.SetAttribute(h1, "title", "foo"))

		text, err := host.CreateNode(domain.TextTag)
		require.NoError(t, err)
		require.NoError(t, host.SetAttribute(text, domain.PropNodeValue, "Hello"))

		require.NoError(t, host.AppendChild(h1, text))
		require.NoError(t, host.AppendChild(container, h1))

		snap := snapshotOf(t, host, container)
		if snap == nil {
			return
		}
		require.Len(t, snap.Children, 1)
		assert.Equal(t, "h1", snap.Children[0].Kind)
		assert.Equal(t, "foo", snap.Children[0].Attrs["title"])
		assert.Equal(t, "Hello", snap.TextContent())
	})

	t.Run("Clear Attribute", func(t *testing.T) {
		host, container := factory(t)

		div, err := host.CreateNode("div")
		require.NoError(t, err)
		require.NoError(t, host.SetAttribute(div, "class", "x"))
		require.NoError(t, host.AppendChild(container, div))
		require.NoError(t, host.ClearAttribute(div, "class"))

		snap := snapshotOf(t, host, container)
		if snap == nil {
			return
		}
		require.Len(t, snap.Children, 1)
		assert.NotContains(t, snap.Children[0].Attrs, "class")
	})

	t.Run("Remove Child", func(t *testing.T) {
		host, container := factory(t)

		a, _ := host.CreateNode("a")
		b, _ := host.CreateNode("b")
		require.NoError(t, host.AppendChild(container, a))
		require.NoError(t, host.AppendChild(container, b))
		require.NoError(t, host.RemoveChild(container, a))

		snap := snapshotOf(t, host, container)
		if snap == nil {
			return
		}
		require.Len(t, snap.Children, 1)
		assert.Equal(t, "b", snap.Children[0].Kind)
	})

	t.Run("Insert Before", func(t *testing.T) {
		host, container := factory(t)
		inserter, ok := host.(NodeInserter)
		if !ok {
			t.Skip("host does not implement NodeInserter")
		}

		a, _ := host.CreateNode("a")
		c, _ := host.CreateNode("c")
		b, _ := host.CreateNode("b")
		require.NoError(t, host.AppendChild(container, a))
		require.NoError(t, host.AppendChild(container, c))
		require.NoError(t, inserter.InsertBefore(container, b, c))

		snap := snapshotOf(t, host, container)
		if snap == nil {
			return
		}
		require.Len(t, snap.Children, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{snap.Children[0].Kind, snap.Children[1].Kind, snap.Children[2].Kind})
	})

	t.Run("Listeners", func(t *testing.T) {
		host, container := factory(t)
		dispatcher, ok := host.(Dispatcher)
		if !ok {
			t.Skip("host does not implement Dispatcher")
		}

		button, _ := host.CreateNode("button")
		require.NoError(t, host.AppendChild(container, button))

		clicks := 0
		handler := domain.Handler(func(domain.Event) { clicks++ })
		require.NoError(t, host.AddListener(button, "click", handler))

		handled, err := dispatcher.Dispatch(button, "click", nil)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, 1, clicks)

		require.NoError(t, host.RemoveListener(button, "click", handler))
		handled, err = dispatcher.Dispatch(button, "click", nil)
		require.NoError(t, err)
		assert.False(t, handled)
		assert.Equal(t, 1, clicks)
	})
}

func snapshotOf(t *testing.T, host Host, node domain.NodeRef) *domain.Snapshot {
	t.Helper()
	s, ok := host.(Snapshotter)
	if !ok {
		return nil
	}
	snap, err := s.Snapshot(node)
	require.NoError(t, err)
	return snap
}

// RunFinderContract verifies lookups by the "id" attribute, when supported.
func RunFinderContract(t *testing.T, factory HostFactory) {
	host, container := factory(t)
	finder, ok := host.(Finder)
	if !ok {
		t.Skip("host does not implement Finder")
	}

	outer, _ := host.CreateNode("div")
	inner, _ := host.CreateNode("span")
	require.NoError(t, host.SetAttribute(inner, "id", "target"))
	require.NoError(t, host.AppendChild(outer, inner))
	require.NoError(t, host.AppendChild(container, outer))

	found, ok := finder.Find(container, "target")
	require.True(t, ok)
	assert.Equal(t, inner, found)

	_, ok = finder.Find(container, "missing")
	assert.False(t, ok)
}
