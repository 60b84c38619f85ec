package runtime_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var counter = domain.NewComponent("Counter", func(h domain.Hooks, props domain.Props) (domain.Element, error) {
	count, setCount := domain.UseState(h, 1)
	return domain.H("div", nil,
		domain.H("button", domain.Props{
			"id":      "inc",
			"onClick": func() { setCount.Update(func(c int) int { return c + 1 }) },
		}, "+"),
		domain.H("span", domain.Props{"id": "value"}, count),
	), nil
})

func valueOf(t *testing.T, f *fixture) string {
	t.Helper()
	node, ok := f.host.Find(f.container, "value")
	require.True(t, ok)
	snap, err := f.host.Snapshot(node)
	require.NoError(t, err)
	return snap.TextContent()
}

func TestHooks_StatePersistsAcrossPasses(t *testing.T) {
	f := newFixture()
	f.render(t, domain.C(counter, nil))
	assert.Equal(t, "1", valueOf(t, f))

	f.click(t, "inc")
	f.flush(t)
	assert.Equal(t, "2", valueOf(t, f))

	f.click(t, "inc")
	f.flush(t)
	assert.Equal(t, "3", valueOf(t, f), "each enqueued action applies exactly once")

	// Re-rendering without new actions must not replay old ones.
	f.render(t, domain.C(counter, nil))
	assert.Equal(t, "3", valueOf(t, f))
}

func TestHooks_ActionsQueuedBeforeOnePassAllApply(t *testing.T) {
	f := newFixture()
	f.render(t, domain.C(counter, nil))

	f.click(t, "inc")
	f.click(t, "inc")
	f.click(t, "inc")
	f.flush(t)

	assert.Equal(t, "4", valueOf(t, f))
}

func TestHooks_SetterSchedulesPassAnchoredAtCommittedRoot(t *testing.T) {
	var scheduled []bool
	f := newFixture(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnRenderScheduled: func(_ context.Context, e *domain.RenderEvent) { scheduled = append(scheduled, e.Setter) },
	}))
	f.render(t, domain.C(counter, nil))
	committed := f.engine.Current()

	f.click(t, "inc")

	require.Equal(t, []bool{false, true}, scheduled)
	require.NotNil(t, f.engine.Pending())
	assert.Same(t, committed, f.engine.Pending().Alternate)
	assert.Equal(t, domain.StatusMoreWork, f.engine.Status())
}

func TestHooks_IndependentCells(t *testing.T) {
	pair := domain.NewComponent("Pair", func(h domain.Hooks, _ domain.Props) (domain.Element, error) {
		a, setA := domain.UseState(h, "a")
		b, setB := domain.UseState(h, 10)
		return domain.H("p", domain.Props{
			"id":         "pair",
			"onClick":    func() { setA.Set(a + "a") },
			"onDblclick": func() { setB.Update(func(v int) int { return v * 2 }) },
		}, fmt.Sprintf("%s/%d", a, b)), nil
	})

	f := newFixture()
	f.render(t, domain.C(pair, nil))

	f.click(t, "pair")
	f.flush(t)
	node, _ := f.host.Find(f.container, "pair")
	_, err := f.host.Dispatch(node, "dblclick", nil)
	require.NoError(t, err)
	f.flush(t)

	assert.Equal(t, "<p id=\"pair\">aa/20</p>", f.markup())
}

func TestHooks_PerInstanceState(t *testing.T) {
	f := newFixture()
	f.render(t, domain.H("main", nil,
		domain.H("section", nil, domain.C(counter, nil)),
	))
	f.click(t, "inc")
	f.flush(t)

	// A second counter instance mounts with fresh state.
	f.render(t, domain.H("main", nil,
		domain.H("section", nil, domain.C(counter, nil)),
		domain.H("section", nil, domain.C(counter, nil)),
	))
	snap, err := f.host.Snapshot(f.container)
	require.NoError(t, err)
	var values []string
	snap.Walk(func(s *domain.Snapshot) {
		if s.Attrs["id"] == "value" {
			values = append(values, s.TextContent())
		}
	})
	assert.Equal(t, []string{"2", "1"}, values)
}

func TestHooks_MismatchAbortsPass(t *testing.T) {
	var extra bool
	flaky := domain.NewComponent("Flaky", func(h domain.Hooks, _ domain.Props) (domain.Element, error) {
		v, _ := domain.UseState(h, "x")
		if extra {
			domain.UseState(h, 0)
		}
		return domain.H("i", nil, v), nil
	})

	f := newFixture()
	f.render(t, domain.C(flaky, nil))
	committed := f.engine.Current()

	extra = true
	f.engine.Render(domain.C(flaky, nil), f.container)
	_, err := f.engine.Work(context.Background(), unlimited{})

	require.ErrorIs(t, err, domain.ErrHookMismatch)
	var mismatch *runtime.HookMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1, mismatch.Previous)
	assert.Equal(t, 2, mismatch.Current)
	assert.Same(t, committed, f.engine.Current())
	assert.Equal(t, "<i>x</i>", f.markup())
}

func TestHooks_SetterDuringEvaluationRestartsPass(t *testing.T) {
	renders := 0
	eager := domain.NewComponent("Eager", func(h domain.Hooks, _ domain.Props) (domain.Element, error) {
		renders++
		v, set := domain.UseState(h, 0)
		if v > 0 && v < 3 {
			set.Set(v + 1)
		}
		return domain.H("b", domain.Props{"id": "n", "onClick": func() { set.Set(1) }}, v), nil
	})

	f := newFixture()
	f.render(t, domain.C(eager, nil))
	assert.Equal(t, "<b id=\"n\">0</b>", f.markup())

	renders = 0
	f.click(t, "n")
	f.flush(t)

	assert.Equal(t, "<b id=\"n\">3</b>", f.markup())
	assert.Equal(t, 3, renders, "values 1 and 2 restart the pass, 3 commits")
}

func TestHooks_RenderLoopIsBounded(t *testing.T) {
	loop := domain.NewComponent("Loop", func(h domain.Hooks, _ domain.Props) (domain.Element, error) {
		v, set := domain.UseState(h, 0)
		set.Set(v + 1)
		return domain.H("b", nil, v), nil
	})

	f := newFixture()
	f.engine.Render(domain.C(loop, nil), f.container)

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		_, err = f.engine.Work(context.Background(), unlimited{})
	}
	require.ErrorIs(t, err, runtime.ErrRenderLoop)
	assert.Nil(t, f.engine.Current())
	assert.Equal(t, domain.StatusIdle, f.engine.Status())
}
