/*
Package arbor is an incremental UI-reconciliation runtime.

Applications describe what the UI should look like as immutable element trees;
arbor keeps a tree of fibers (one per element) and, on every render, diffs the
new description against the committed one, then applies the minimal set of
changes to a host environment: an in-memory tree, an HTML document, or
anything implementing ports.Host.

# Concept

Work is split in two phases. The render phase walks the fiber tree one unit at
a time, evaluating components and reconciling children; it can stop whenever
its deadline runs short and resume later, so long renders never block the
caller. Nothing touches the host during this phase. The commit phase then
applies every placement, update and deletion in one uninterruptible step, so
the host never shows a half-rendered tree.

Components are plain functions with hooks:

	var Counter = domain.NewComponent("Counter", func(h domain.Hooks, p domain.Props) (domain.Element, error) {
		count, setCount := domain.UseState(h, 1)
		return domain.H("button", domain.Props{
			"id":      "inc",
			"onClick": func() { setCount.Update(func(n int) int { return n + 1 }) },
		}, "Count: ", count), nil
	})

# Usage

	host := memory.NewHost()
	container := host.NewContainer()

	rt, err := arbor.New(host)
	if err != nil {
		log.Fatal(err)
	}

	rt.Render(domain.C(Counter, nil), container)
	if err := rt.Flush(ctx); err != nil { // or rt.Work(ctx, runner.Budget(5*time.Millisecond))
		log.Fatal(err)
	}

	rt.Dispatch("inc", "click", nil) // the setter schedules a new pass
	_ = rt.Flush(ctx)

	fmt.Println(host.Render(container)) // <button id="inc">Count: 2</button>

Long-running programs attach the runtime to a scheduler instead of flushing:

	loop := runner.NewFrameLoop()
	go loop.Run(ctx)
	rt.Attach(ctx, loop, func(err error) { log.Println(err) })

Views can also live in files (see package dsl for the document format):

	rt, err := arbor.New(host, arbor.WithViewDir("./views"), arbor.WithRegistry(reg), arbor.WithContainer(container))
	err = rt.RenderView(ctx, "home")
*/
package arbor
