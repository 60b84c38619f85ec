/*
Package runner drives an arbor runtime outside of tests.

It provides the pieces a host platform needs to feed the cooperative scheduler
and to interact with a rendered tree:

  - FrameLoop: a single goroutine that owns the runtime. It runs posted tasks
    and grants idle slices of a fixed budget once per frame.
  - Driver: binds a runtime to any ports.IdleScheduler, requesting a new slice
    whenever work is scheduled or a slice ends with work remaining.
  - Runner: an interactive loop that prints every committed frame through an
    IOHandler (text or JSON lines) and turns input commands into host events.

# Usage

	loop := runner.NewFrameLoop(runner.WithSliceBudget(4 * time.Millisecond))
	driver := runner.NewDriver(rt, loop, func(err error) { log.Println(err) })
	rt.SetScheduleNotifier(driver.Wake)

	go loop.Run(ctx)
	loop.Post(func() { rt.Render(app) })
*/
package runner
