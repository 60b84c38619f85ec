package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{Kind: RootTag, Children: []*Snapshot{
		{Kind: "div", Attrs: map[string]any{"id": "app", "class": "x"}, Events: []string{"click"}, Children: []*Snapshot{
			{Kind: TextTag, Text: "a < b"},
			{Kind: "span", Children: []*Snapshot{{Kind: TextTag, Text: "!"}}},
		}},
	}}
}

func TestSnapshot_Clone(t *testing.T) {
	orig := sampleSnapshot()
	clone := orig.Clone()

	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	clone.Children[0].Attrs["id"] = "other"
	clone.Children[0].Events[0] = "input"
	clone.Children[0].Children[1].Children[0].Text = "?"

	diff := cmp.Diff(sampleSnapshot(), orig)
	assert.Empty(t, diff, "mutating the clone leaves the original intact")
	assert.Nil(t, (*Snapshot)(nil).Clone())
}

func TestSnapshot_MarkupAndText(t *testing.T) {
	snap := sampleSnapshot()

	assert.Equal(t, `<div class="x" id="app">a &lt; b<span>!</span></div>`, snap.Markup())
	assert.Equal(t, "a < b!", snap.TextContent())
	assert.Equal(t, "", (*Snapshot)(nil).Markup())

	var kinds []string
	snap.Walk(func(s *Snapshot) { kinds = append(kinds, s.Kind) })
	assert.Equal(t, []string{RootTag, "div", TextTag, "span", TextTag}, kinds)
}
