package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Target is the rendered container a Runner interacts with.
type Target interface {
	Worker
	// Snapshot describes the committed host tree.
	Snapshot() (*domain.Snapshot, error)
	// LastCommit returns the report of the most recent commit.
	LastCommit() domain.CommitReport
	// Dispatch delivers event to the node whose "id" attribute is id.
	Dispatch(id, event string, payload any) (bool, error)
}

// Runner handles the interactive loop around a rendered container using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
//
// The loop is synchronous: every command is dispatched, the resulting pass is
// flushed to its commit, and the new frame is printed before the next read.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store persists every committed frame under ContainerID.
	// If nil, frames are not persisted.
	Store       ports.SnapshotStore
	ContainerID string
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run presents the current tree and processes commands until the input ends,
// a quit command arrives, ctx is cancelled or an interrupt signal is received.
func (r *Runner) Run(ctx context.Context, target Target) error {
	handler := r.resolveHandler()
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	signals := NewSignalManager()
	defer signals.Stop()
	ctx, release := signals.Bind(ctx)
	defer release()

	if err := Flush(ctx, target); err != nil {
		return fmt.Errorf("initial render failed: %w", err)
	}
	if err := r.present(ctx, handler, target); err != nil {
		return err
	}

	for {
		cmd, err := handler.Input(ctx)
		if err != nil {
			if signals.Settle() || ctx.Err() != nil {
				logger.Debug("runner input: context cancelled", "err", ctx.Err())
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if cmd.Quit {
			return nil
		}

		handled, err := target.Dispatch(cmd.Target, cmd.Event, cmd.Payload)
		if err != nil {
			_ = handler.SystemOutput(ctx, err.Error())
			continue
		}
		if !handled {
			_ = handler.SystemOutput(ctx, fmt.Sprintf("no %q listener on %q", cmd.Event, cmd.Target))
			continue
		}
		logger.Debug("event dispatched", "event", cmd.Event, "target", cmd.Target)

		if err := Flush(ctx, target); err != nil {
			// The pass was discarded; the previous frame is still current.
			logger.Warn("render failed", "err", err)
			_ = handler.SystemOutput(ctx, "render failed: "+err.Error())
			continue
		}
		if err := r.present(ctx, handler, target); err != nil {
			return err
		}
	}
}

func (r *Runner) present(ctx context.Context, handler IOHandler, target Target) error {
	snap, err := target.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}
	report := target.LastCommit()
	if err := handler.Output(ctx, Frame{Pass: report.Pass, Snapshot: snap, Report: report}); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return r.save(ctx, snap)
}

func (r *Runner) save(ctx context.Context, snap *domain.Snapshot) error {
	if r.Store == nil || r.ContainerID == "" {
		return nil
	}
	if err := r.Store.Save(ctx, r.ContainerID, snap); err != nil {
		return fmt.Errorf("critical persistence error: %w", err)
	}
	if r.Logger != nil {
		r.Logger.Debug("snapshot saved", "container_id", r.ContainerID)
	}
	return nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}
