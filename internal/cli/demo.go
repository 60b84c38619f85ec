package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"golang.org/x/term"
)

const clearScreen = "\x1b[H\x1b[2J"

// demoKeys maps single keystrokes to the demo app's buttons.
var demoKeys = map[byte]string{
	'+': "inc",
	'=': "inc",
	'-': "dec",
	'a': "add",
	'd': "done-0",
}

const demoHelp = "keys: + / - counter, a add draft, d finish first item, q quit"

// RunDemo mounts the demo app on a frame loop and drives it from the
// keyboard. Renders are time-sliced exactly as in an embedding host: key
// presses are posted as tasks and every commit redraws the screen.
func RunDemo(opts RunOptions) error {
	opts.Demo = true
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.LogLevel, true)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	loop := runner.NewFrameLoop(
		runner.WithFrameInterval(cfg.FrameInterval),
		runner.WithSliceBudget(cfg.SliceBudget),
		runner.WithFrameLogger(logger),
	)

	scr := &screen{out: os.Stdout, render: tui.NewRenderer()}
	var rt *arbor.Runtime
	redraw := domain.LifecycleHooks{
		// Commits run on the loop goroutine, so reading the tree here is safe.
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			scr.draw(rt, e.Report)
		},
	}
	rt, _, err = createRuntime(cfg, opts, logger, arbor.WithLifecycleHooks(redraw))
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer term.Restore(fd, state)
		scr.raw = true
	}

	loop.Post(func() {
		rt.Attach(ctx, loop, func(err error) {
			logger.Warn("render failed", "err", err)
			scr.status = err.Error()
		})
		if _, err := scheduleRoot(ctx, rt, cfg, opts); err != nil {
			scr.status = err.Error()
		}
	})

	go readKeys(ctx, os.Stdin, func(key byte) {
		if key == 'q' || key == 3 || key == 4 {
			cancel()
			return
		}
		id, ok := demoKeys[key]
		if !ok {
			return
		}
		loop.Post(func() {
			if _, err := rt.Dispatch(id, "click", nil); err != nil {
				scr.status = err.Error()
			}
		})
	})

	err = loop.Run(ctx)
	scr.println("")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// screen redraws the whole frame on every commit. It is only touched from
// the loop goroutine.
type screen struct {
	out    io.Writer
	render runner.ContentRenderer
	raw    bool
	status string
}

func (s *screen) draw(rt *arbor.Runtime, report domain.CommitReport) {
	snap, err := rt.Snapshot()
	if err != nil {
		s.status = err.Error()
		return
	}
	frame, err := s.render(snap)
	if err != nil {
		frame = snap.Markup()
	}
	fmt.Fprint(s.out, clearScreen)
	s.println(frame)
	s.println(fmt.Sprintf("pass %d: %d placed, %d patched, %d removed",
		report.Pass, report.Count(domain.EffectPlacement), report.Patched(), report.Count(domain.EffectDeletion)))
	if s.status != "" {
		s.println("! " + s.status)
		s.status = ""
	}
	s.println(demoHelp)
}

// println writes text, translating newlines while the terminal is raw.
func (s *screen) println(text string) {
	text += "\n"
	if s.raw {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	fmt.Fprint(s.out, text)
}

// readKeys delivers keystrokes one byte at a time until ctx ends or r fails.
func readKeys(ctx context.Context, r io.Reader, onKey func(byte)) {
	buf := make([]byte, 1)
	for ctx.Err() == nil {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			onKey(buf[0])
		}
	}
}
