// Package demo holds the components behind `arbor demo` and the sample views.
// View documents reach them by name through Registry.
package demo

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// Counter shows a number with decrement and increment buttons.
// Props: "label" (string), "start" (int).
var Counter = domain.NewComponent("Counter", func(h domain.Hooks, props domain.Props) (domain.Element, error) {
	start, _ := props["start"].(int)
	count, setCount := domain.UseState(h, start)
	label, _ := props["label"].(string)
	if label == "" {
		label = "Count"
	}
	return domain.H("div", domain.Props{"class": "counter"},
		domain.H("p", nil, label+": ", domain.H("strong", nil, count)),
		domain.H("button", domain.Props{
			"id":      "dec",
			"onClick": func() { setCount.Update(func(n int) int { return n - 1 }) },
		}, "-"),
		domain.H("button", domain.Props{
			"id":      "inc",
			"onClick": func() { setCount.Update(func(n int) int { return n + 1 }) },
		}, "+"),
	), nil
})

// Todo is a list with a draft input. "add" appends the draft; "done-N"
// removes item N.
var Todo = domain.NewComponent("Todo", func(h domain.Hooks, props domain.Props) (domain.Element, error) {
	items, setItems := domain.UseState(h, initialItems(props["items"]))
	draft, setDraft := domain.UseState(h, "")

	list := make([]domain.Element, 0, len(items))
	for i, item := range items {
		i := i
		list = append(list, domain.H("li", nil,
			item, " ",
			domain.H("button", domain.Props{
				"id": fmt.Sprintf("done-%d", i),
				"onClick": func() {
					setItems.Update(func(prev []string) []string {
						if i >= len(prev) {
							return prev
						}
						next := append([]string{}, prev[:i]...)
						return append(next, prev[i+1:]...)
					})
				},
			}, "done"),
		))
	}

	return domain.H("section", domain.Props{"class": "todo"},
		domain.H("h2", nil, "Todo"),
		domain.H("ul", nil, list),
		domain.H("input", domain.Props{
			"id":          "draft",
			"value":       draft,
			"placeholder": "new item",
			"onInput": func(e domain.Event) {
				if s, ok := e.Payload.(string); ok {
					setDraft.Set(s)
				}
			},
		}),
		domain.H("button", domain.Props{
			"id": "add",
			"onClick": func() {
				text := strings.TrimSpace(draft)
				if text == "" {
					return
				}
				setItems.Update(func(prev []string) []string {
					return append(append([]string{}, prev...), text)
				})
				setDraft.Set("")
			},
		}, "add"),
		domain.H("p", nil, fmt.Sprintf("%d left", len(items))),
	), nil
})

// Greeting renders "Hello, <name>!" with an optional level-1 heading.
var Greeting = domain.NewComponent("Greeting", func(_ domain.Hooks, props domain.Props) (domain.Element, error) {
	name, _ := props["name"].(string)
	if name == "" {
		name = "world"
	}
	return domain.H("h1", domain.Props{"title": "greeting"}, "Hello, "+name+"!"), nil
})

// App composes the demo: a greeting, a counter and a todo list.
var App = domain.NewComponent("App", func(_ domain.Hooks, props domain.Props) (domain.Element, error) {
	return domain.H("main", domain.Props{"id": "app"},
		domain.C(Greeting, domain.Props{"name": props["name"]}),
		domain.C(Counter, nil),
		domain.C(Todo, domain.Props{"items": []string{"write docs", "ship"}}),
	), nil
})

// Registry returns a registry with every demo component.
func Registry() *registry.Registry {
	return registry.NewRegistry(Counter, Todo, Greeting, App)
}

func initialItems(v any) []string {
	switch items := v.(type) {
	case []string:
		return append([]string{}, items...)
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return []string{}
}
