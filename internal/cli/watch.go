package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/runner"
)

// reloadSettle lets editors finish writing before the view is reloaded.
const reloadSettle = 100 * time.Millisecond

// RunWatch renders a view and re-renders it whenever its documents change.
// The runtime is reused across reloads, so component state survives and each
// reload only patches what the edit changed. Commands typed on stdin are
// dispatched between reloads.
func RunWatch(opts RunOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.LogLevel, true)
	tui.PrintBanner(arbor.Version)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	rt, _, err := createRuntime(cfg, opts, logger)
	if err != nil {
		return err
	}
	view, err := scheduleRoot(sigCtx, rt, cfg, opts)
	if err != nil {
		return err
	}
	if opts.View == "" {
		opts.View = view
	}

	changes, err := rt.Watch(sigCtx)
	if err != nil {
		return err
	}
	logger.Info("Starting Watcher", "path", cfg.Views, "view", view)
	printSystemMessage("Watching '%s' (view '%s').", cfg.Views, view)

	w := &watcher{rt: rt, logger: logger, out: os.Stdout, render: tui.NewRenderer(), markdown: tui.NewMarkdownRenderer()}
	w.commit(sigCtx)

	commands := readCommands(sigCtx, os.Stdin)
	for {
		select {
		case <-sigCtx.Done():
			logCompletion("", sigCtx.Err(), false, sigCtx.Signal())
			return handleExecutionError(sigCtx.Err())

		case event, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected, triggering reload", "event", event)
			printSystemMessage("Change detected in '%s'.", event)
			time.Sleep(reloadSettle)
			if err := rt.RenderView(sigCtx, opts.View); err != nil {
				printSystemMessage("Reload failed: %v", err)
				continue
			}
			w.commit(sigCtx)

		case line, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			cmd, err := runner.ParseCommand(line)
			if err != nil {
				printSystemMessage("%v", err)
				continue
			}
			if cmd.Quit {
				return nil
			}
			handled, err := rt.Dispatch(cmd.Target, cmd.Event, cmd.Payload)
			if err != nil || !handled {
				printSystemMessage("No %q listener on %q.", cmd.Event, cmd.Target)
				continue
			}
			w.commit(sigCtx)
		}
	}
}

type watcher struct {
	rt       *arbor.Runtime
	logger   *slog.Logger
	out      io.Writer
	render   runner.ContentRenderer
	markdown func(string) (string, error)
	lastPass uint64
}

// commit flushes the pending pass and prints the frame and its effects.
// A failed pass keeps the previous frame on screen.
func (w *watcher) commit(ctx context.Context) {
	if err := w.rt.Flush(ctx); err != nil {
		w.logger.Warn("render failed", "err", err)
		printSystemMessage("Render failed: %v", err)
		return
	}
	report := w.rt.LastCommit()
	if report.Pass == w.lastPass {
		return
	}
	w.lastPass = report.Pass

	snap, err := w.rt.Snapshot()
	if err != nil {
		printSystemMessage("Snapshot failed: %v", err)
		return
	}
	if frame, err := w.render(snap); err == nil {
		fmt.Fprint(w.out, frame)
	}
	if summary, err := w.markdown(tui.ReportMarkdown(report)); err == nil {
		fmt.Fprint(w.out, summary)
	}
}

// readCommands pumps stdin lines into a channel until EOF or ctx ends.
func readCommands(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
