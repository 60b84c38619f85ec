package runner

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the SnapshotStore that receives every committed frame.
// Frames are saved under the ID given by WithContainerID.
func WithStore(store ports.SnapshotStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithContainerID sets the ID frames are persisted under.
func WithContainerID(id string) Option {
	return func(r *Runner) {
		r.ContainerID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}
