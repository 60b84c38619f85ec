package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
)

// SignalContext is cancelled by SIGINT or SIGTERM and remembers which
// signal did it, so commands can report "interrupted" and "terminated" apart.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc
	sig    atomic.Pointer[os.Signal]
}

// NewSignalContext starts listening immediately. The listener is released
// once the context ends for any reason.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.sig.Store(&sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	if p := sc.sig.Load(); p != nil {
		return *p
	}
	return nil
}

// createLogger configures the application logger.
// It writes to Stderr (to separate from the rendered output on Stdout).
// Below debug level, interactive commands stay quiet unless asked.
func createLogger(level string, quiet bool) *slog.Logger {
	lvl := logging.ParseLevel(level)
	if quiet && lvl > slog.LevelDebug {
		return logging.NewNop()
	}
	return logging.New(lvl)
}

// createDebugHooks logs every pass at Debug, on top of commits and aborts.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.MergeHooks(observability.LogHooks(logger), domain.LifecycleHooks{
		OnRenderScheduled: func(ctx context.Context, e *domain.RenderEvent) {
			logger.Debug("Render scheduled", "pass", e.Pass, "setter", e.Setter, "superseded", e.Superseded)
		},
		OnYield: func(ctx context.Context, e *domain.YieldEvent) {
			logger.Debug("Slice yielded", "pass", e.Pass, "units", e.Units)
		},
	})
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(containerID string, err error, quiet bool, sig os.Signal) {
	if quiet {
		return
	}
	label := containerID
	if label == "" {
		label = "ephemeral"
	}
	switch {
	case err == nil && sig == nil:
		printSystemMessage("Finished '%s' container.", label)
	case sig == os.Interrupt:
		fmt.Printf("[CTRL+C]\n")
		printSystemMessage("Interrupted '%s' container.", label)
	case sig != nil:
		fmt.Printf("\n")
		printSystemMessage("Terminated '%s' container.", label)
	case isInterrupted(err):
		printSystemMessage("Interrupted '%s' container.", label)
	}
}
