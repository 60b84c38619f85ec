package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func list(kinds ...string) domain.Element {
	children := make([]any, 0, len(kinds))
	for _, k := range kinds {
		children = append(children, domain.H(k, nil, k))
	}
	return domain.H("div", nil, children...)
}

func TestReconcile_PositionalMatching(t *testing.T) {
	f := newFixture()
	f.render(t, list("h1", "p", "span"))
	require.Equal(t, "<div><h1>h1</h1><p>p</p><span>span</span></div>", f.markup())

	f.engine.Render(list("h1", "section", "span"), f.container)

	// Two units: the root reconciles the div, the div reconciles its children.
	status, err := f.engine.Work(context.Background(), &unitBudget{left: 2})
	require.NoError(t, err)
	require.Equal(t, domain.StatusMoreWork, status)

	div := f.engine.Pending().Child
	require.NotNil(t, div)
	assert.Equal(t, domain.EffectUpdate, div.Effect)
	assert.Equal(t,
		[]domain.EffectTag{domain.EffectUpdate, domain.EffectPlacement, domain.EffectUpdate},
		effectsOf(div))

	deletions := f.engine.Deletions()
	require.Len(t, deletions, 1)
	assert.Equal(t, "p", deletions[0].Kind.Name())
	assert.Equal(t, domain.EffectDeletion, deletions[0].Effect)

	f.flush(t)
	assert.Equal(t, "<div><h1>h1</h1><section>section</section><span>span</span></div>", f.markup(),
		"placement is inserted before the next mounted sibling")

	report := f.engine.LastCommit()
	assert.Equal(t, 1, report.Deletions)
	assert.Equal(t, 1, report.Count(domain.EffectDeletion))
}

func TestReconcile_UpdateKeepsNodeAndAlternate(t *testing.T) {
	f := newFixture()
	f.render(t, domain.H("div", domain.Props{"title": "a"}))
	committed := f.engine.Current().Child

	f.engine.Render(domain.H("div", domain.Props{"title": "b"}), f.container)
	_, err := f.engine.Work(context.Background(), &unitBudget{left: 1})
	require.NoError(t, err)

	div := f.engine.Pending().Child
	require.NotNil(t, div)
	assert.Same(t, committed, div.Alternate)
	assert.Equal(t, committed.Node, div.Node)
	assert.Nil(t, committed.Alternate, "alternates are released on commit")
}

func TestReconcile_KindChangeReplaces(t *testing.T) {
	f := newFixture()
	f.render(t, domain.H("div", nil, domain.H("p", nil, "x")))
	f.host.ResetOps()

	f.render(t, domain.H("div", nil, domain.H("pre", nil, "x")))

	assert.Equal(t, "<div><pre>x</pre></div>", f.markup())
	assert.Equal(t, 1, f.host.Count("remove"))
	assert.Equal(t, 2, f.host.Count("create"), "pre and its text")
}

func TestReconcile_GrowAndShrink(t *testing.T) {
	f := newFixture()
	f.render(t, list("a"))
	f.render(t, list("a", "b", "c"))
	assert.Equal(t, "<div><a>a</a><b>b</b><c>c</c></div>", f.markup())

	f.host.ResetOps()
	f.render(t, list("a", "b"))
	assert.Equal(t, "<div><a>a</a><b>b</b></div>", f.markup())
	assert.Len(t, f.engine.Current().Child.Children(), 2)
	assert.Equal(t, 1, f.engine.LastCommit().Deletions, "exactly one fiber in the deletion set")
	assert.Equal(t, 1, f.host.Count("remove"), "exactly one removeChild call")
}

func TestReconcile_ComponentDeletionRemovesHostDescendants(t *testing.T) {
	pair := domain.NewComponent("Pair", func(_ domain.Hooks, props domain.Props) (domain.Element, error) {
		return domain.H("span", nil, props.String("label")), nil
	})

	f := newFixture()
	f.render(t, domain.H("ul", nil,
		domain.C(pair, domain.Props{"label": "one"}),
		domain.C(pair, domain.Props{"label": "two"}),
	))
	assert.Equal(t, "<ul><span>one</span><span>two</span></ul>", f.markup())

	f.render(t, domain.H("ul", nil, domain.C(pair, domain.Props{"label": "one"})))
	assert.Equal(t, "<ul><span>one</span></ul>", f.markup())
}

func TestReconcile_InsertAcrossComponentBoundary(t *testing.T) {
	maybe := domain.NewComponent("Maybe", func(_ domain.Hooks, props domain.Props) (domain.Element, error) {
		if props["show"] != true {
			return domain.Element{}, nil
		}
		return domain.H("b", nil, "shown"), nil
	})

	f := newFixture()
	f.render(t, domain.H("p", nil, domain.C(maybe, domain.Props{"show": false}), domain.H("i", nil, "tail")))
	assert.Equal(t, "<p><i>tail</i></p>", f.markup())

	f.render(t, domain.H("p", nil, domain.C(maybe, domain.Props{"show": true}), domain.H("i", nil, "tail")))
	assert.Equal(t, "<p><b>shown</b><i>tail</i></p>", f.markup())
}
