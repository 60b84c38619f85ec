package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_NormalizesChildren(t *testing.T) {
	el := H("ul", Props{"class": "list"},
		"first",
		nil,
		42,
		[]Element{H("li", nil), H("li", nil)},
		[]any{true, H("hr", nil)},
	)

	require.Len(t, el.Children, 6)
	assert.Equal(t, TextKind, el.Children[0].Kind)
	assert.Equal(t, "first", el.Children[0].Props[PropNodeValue])
	assert.Equal(t, "42", el.Children[1].Props[PropNodeValue])
	assert.True(t, el.Children[2].Kind.Equal(Host("li")))
	assert.Equal(t, "true", el.Children[4].Props[PropNodeValue])
	assert.True(t, el.Children[5].Kind.Equal(Host("hr")))

	assert.Equal(t, el.Children, el.Props.Children(), "props.children mirrors Children")
	assert.Equal(t, "list", el.Props.String("class"))
}

func TestBuild_DoesNotMutateInputProps(t *testing.T) {
	in := Props{"title": "foo"}
	el := H("h1", in, "Hello")

	_, has := in[PropChildren]
	assert.False(t, has)
	assert.Equal(t, "foo", el.Props["title"])
}

func TestKind_Equal(t *testing.T) {
	a := NewComponent("A", func(Hooks, Props) (Element, error) { return Text("a"), nil })
	b := NewComponent("A", func(Hooks, Props) (Element, error) { return Text("a"), nil })

	assert.True(t, Host("div").Equal(Host("div")))
	assert.False(t, Host("div").Equal(Host("span")))
	assert.True(t, TextKind.Equal(Text("x").Kind))
	assert.False(t, Host(TextTag).Equal(TextKind), "host tag never matches the text variant")
	assert.True(t, ComponentKind(a).Equal(ComponentKind(a)))
	assert.False(t, ComponentKind(a).Equal(ComponentKind(b)), "components compare by identity")
}

type fakeHooks struct {
	state any
	queue []Action
}

func (f *fakeHooks) State(initial any) (any, func(Action)) {
	if f.state == nil {
		f.state = initial
	}
	return f.state, func(a Action) { f.queue = append(f.queue, a) }
}

func TestUseState_Setter(t *testing.T) {
	h := &fakeHooks{}
	v, set := UseState(h, 1)
	assert.Equal(t, 1, v)

	set.Update(func(c int) int { return c + 1 })
	set.Set(10)
	require.Len(t, h.queue, 2)

	state := any(v)
	for _, a := range h.queue {
		state = a(state)
	}
	assert.Equal(t, 10, state)
	assert.Equal(t, 2, h.queue[0](1))
}

func TestSnapshot_TextContent(t *testing.T) {
	s := &Snapshot{Kind: "div", Children: []*Snapshot{
		{Kind: TextTag, Text: "a"},
		{Kind: "span", Children: []*Snapshot{{Kind: TextTag, Text: "b"}}},
	}}
	assert.Equal(t, "ab", s.TextContent())
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	merged := MergeHooks(
		LifecycleHooks{OnCommit: func(_ context.Context, _ *CommitEvent) { calls = append(calls, "a") }},
		LifecycleHooks{},
		LifecycleHooks{OnCommit: func(_ context.Context, _ *CommitEvent) { calls = append(calls, "b") }},
	)
	merged.OnCommit(context.Background(), &CommitEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Nil(t, merged.OnAbort)
}
