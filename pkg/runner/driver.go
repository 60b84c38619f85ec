package runner

import (
	"context"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Driver feeds a Worker with idle slices from a scheduler.
//
// Wake requests a slice unless one is already pending. A slice that ends with
// work remaining requests the next one, so a pass always runs to its commit
// without the caller polling.
type Driver struct {
	worker Worker
	sched  ports.IdleScheduler
	onErr  func(error)

	mu      sync.Mutex
	pending bool
	ctx     context.Context
}

// NewDriver binds worker to sched. onErr receives render and commit errors;
// it may be nil.
func NewDriver(worker Worker, sched ports.IdleScheduler, onErr func(error)) *Driver {
	return &Driver{
		worker: worker,
		sched:  sched,
		onErr:  onErr,
		ctx:    context.Background(),
	}
}

// WithContext sets the context passed to every slice.
func (d *Driver) WithContext(ctx context.Context) *Driver {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()
	return d
}

// Wake requests an idle slice. Safe to call from any goroutine.
func (d *Driver) Wake() {
	d.mu.Lock()
	if d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = true
	d.mu.Unlock()
	d.sched.RequestIdleSlice(d.slice)
}

func (d *Driver) slice(deadline ports.Deadline) {
	d.mu.Lock()
	d.pending = false
	ctx := d.ctx
	d.mu.Unlock()

	status, err := d.worker.Work(ctx, deadline)
	if err != nil && d.onErr != nil {
		d.onErr(err)
	}
	if status == domain.StatusMoreWork && ctx.Err() == nil {
		d.Wake()
	}
}
