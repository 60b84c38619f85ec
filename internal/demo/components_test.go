package demo_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mount(t *testing.T, root domain.Element) *arbor.Runtime {
	t.Helper()
	host := memory.NewHost()
	rt, err := arbor.New(host)
	require.NoError(t, err)
	rt.Render(root, host.NewContainer())
	require.NoError(t, rt.Flush(context.Background()))
	return rt
}

func dispatch(t *testing.T, rt *arbor.Runtime, id, event string, payload any) {
	t.Helper()
	handled, err := rt.Dispatch(id, event, payload)
	require.NoError(t, err)
	require.True(t, handled, "%s on %s", event, id)
	require.NoError(t, rt.Flush(context.Background()))
}

func markup(t *testing.T, rt *arbor.Runtime) string {
	t.Helper()
	snap, err := rt.Snapshot()
	require.NoError(t, err)
	return snap.Markup()
}

func TestCounter(t *testing.T) {
	rt := mount(t, domain.C(demo.Counter, domain.Props{"label": "Clicks", "start": 5}))
	assert.Contains(t, markup(t, rt), "<p>Clicks: <strong>5</strong></p>")

	dispatch(t, rt, "inc", "click", nil)
	dispatch(t, rt, "inc", "click", nil)
	dispatch(t, rt, "dec", "click", nil)
	assert.Contains(t, markup(t, rt), "<strong>6</strong>")
	assert.Equal(t, 1, rt.LastCommit().Patched(), "only the number changes")
}

func TestTodo(t *testing.T) {
	rt := mount(t, domain.C(demo.Todo, domain.Props{"items": []any{"milk"}}))
	assert.Contains(t, markup(t, rt), "<p>1 left</p>")

	dispatch(t, rt, "draft", "input", "eggs")
	assert.Contains(t, markup(t, rt), `value="eggs"`)

	dispatch(t, rt, "add", "click", nil)
	out := markup(t, rt)
	assert.Contains(t, out, "<li>eggs <button id=\"done-1\">done</button></li>")
	assert.Contains(t, out, "<p>2 left</p>")
	assert.Contains(t, out, `value=""`)

	dispatch(t, rt, "done-0", "click", nil)
	out = markup(t, rt)
	assert.NotContains(t, out, "milk")
	assert.Contains(t, out, "<p>1 left</p>")
	assert.Equal(t, 1, rt.LastCommit().Count(domain.EffectDeletion), "the trailing item is removed")
}

func TestTodo_EmptyDraftIgnored(t *testing.T) {
	rt := mount(t, domain.C(demo.Todo, nil))
	handled, err := rt.Dispatch("add", "click", nil)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, domain.StatusIdle, rt.Status(), "no pass scheduled")
	assert.Contains(t, markup(t, rt), "<p>0 left</p>")
}

func TestApp(t *testing.T) {
	rt := mount(t, domain.C(demo.App, domain.Props{"name": "Ada"}))
	out := markup(t, rt)
	assert.Contains(t, out, `<h1 title="greeting">Hello, Ada!</h1>`)
	assert.Contains(t, out, `<li>write docs <button id="done-0">done</button></li>`)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"App", "Counter", "Greeting", "Todo"}, demo.Registry().Names())
}
