/*
Package dsl describes element trees as data, so views can live in YAML, JSON or
Markdown front matter and still be rendered by the runtime.

A tree document is a node with exactly one of:

	tag: div            # host element
	component: Counter  # registered component
	view: header        # another view, inlined
	text: Hello         # text content

plus optional props and children. Scalars in a children list are shorthand
for text nodes:

	tag: ul
	props: { class: menu }
	children:
	  - tag: li
	    children: [ Home ]
	  - component: Counter
	    props: { start: 3 }

Documents cannot declare listeners: event props need Go functions and belong
in components.

The same trees can be built in Go with the fluent helpers:

	page := dsl.Tag("main").Prop("id", "home").With(
		dsl.Tag("h1").With(dsl.Text("Hello")),
		dsl.Component("Counter"),
	)

	loader, err := dsl.New().
		Add("home", page).
		Build(registry)
*/
package dsl
