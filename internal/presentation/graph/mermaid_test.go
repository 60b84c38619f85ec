package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var badge = domain.NewComponent("Badge", func(_ domain.Hooks, props domain.Props) (domain.Element, error) {
	return domain.H("span", domain.Props{"class": "badge"}, props["label"]), nil
})

func render(t *testing.T, root domain.Element) *arbor.Runtime {
	t.Helper()
	host := memory.NewHost()
	rt, err := arbor.New(host)
	require.NoError(t, err)
	rt.Render(root, host.NewContainer())
	require.NoError(t, rt.Flush(context.Background()))
	return rt
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		root     domain.Element
		contains []string
	}{
		{
			name: "Node Shapes",
			root: domain.H("div", domain.Props{"id": "app"},
				domain.C(badge, domain.Props{"label": "new"}),
				"hello",
			),
			contains: []string{
				`root(("#root"))`,
				`div_0["div#app"]`,
				`div_0_Badge_0[["Badge"]]`,
				`div_0__text_1[/"hello"/]`,
			},
		},
		{
			name: "Edges Follow Child Order",
			root: domain.H("ul", nil, domain.H("li", nil), domain.H("li", nil)),
			contains: []string{
				"root --> ul_0",
				"ul_0 --> ul_0_li_0",
				"ul_0 --> ul_0_li_1",
			},
		},
		{
			name: "Labels Are Escaped And Truncated",
			root: domain.H("p", nil, `say "hi" to a very long line of text`),
			contains: []string{
				`p_0__text_0[/"say 'hi' to a very long…"/]`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := render(t, tt.root)
			got := graph.GenerateMermaid(rt.Current(), nil)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	host := memory.NewHost()
	rt, err := arbor.New(host)
	require.NoError(t, err)
	container := host.NewContainer()

	rt.Render(domain.H("div", nil, domain.H("b", nil, "1")), container)
	require.NoError(t, rt.Flush(context.Background()))

	first := graph.OverlayFromReport(rt.LastCommit())
	assert.Equal(t, []string{"div[0]", "div[0]/b[0]", "div[0]/b[0]/#text[0]"}, first.Placed)
	assert.Empty(t, first.Updated)

	rt.Render(domain.H("div", nil, domain.H("b", nil, "2")), container)
	require.NoError(t, rt.Flush(context.Background()))

	overlay := graph.OverlayFromReport(rt.LastCommit())
	assert.Empty(t, overlay.Placed)
	assert.Equal(t, []string{"div[0]/b[0]/#text[0]"}, overlay.Updated, "only the changed text is marked")

	got := graph.GenerateMermaid(rt.Current(), overlay)
	assert.Contains(t, got, "classDef updated")
	assert.Contains(t, got, "class div_0_b_0__text_0 updated;")
	assert.NotContains(t, got, "class div_0 updated;")
}

func TestGenerateMermaid_NilRoot(t *testing.T) {
	assert.Equal(t, "graph TD\n", graph.GenerateMermaid(nil, nil))
}
