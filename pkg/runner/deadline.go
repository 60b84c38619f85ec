package runner

import (
	"context"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

type timeDeadline struct {
	end time.Time
}

func (d timeDeadline) TimeRemaining() time.Duration {
	return time.Until(d.end)
}

// Budget returns a deadline that expires d from now.
func Budget(d time.Duration) ports.Deadline {
	return timeDeadline{end: time.Now().Add(d)}
}

// Until returns a deadline that expires at t.
func Until(t time.Time) ports.Deadline {
	return timeDeadline{end: t}
}

type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return time.Duration(1<<63 - 1) }

// Unlimited never expires. A slice with this deadline drains the whole pass.
var Unlimited ports.Deadline = unlimited{}

type unitDeadline struct {
	left int
}

func (d *unitDeadline) TimeRemaining() time.Duration {
	d.left--
	if d.left <= 0 {
		return 0
	}
	return time.Hour
}

// Units returns a deadline that expires after it has been consulted n times,
// i.e. after n work units. It makes slicing deterministic in tests and tools.
func Units(n int) ports.Deadline {
	return &unitDeadline{left: n}
}

// Worker is anything the scheduler can slice: the runtime facade or a bare engine.
type Worker interface {
	Work(ctx context.Context, deadline ports.Deadline) (domain.Status, error)
}

// maxFlushSlices bounds Flush so a pass that keeps rescheduling itself cannot spin forever.
const maxFlushSlices = 10000

// Flush runs unlimited slices until the worker is idle.
func Flush(ctx context.Context, w Worker) error {
	for i := 0; i < maxFlushSlices; i++ {
		status, err := w.Work(ctx, Unlimited)
		if err != nil {
			return err
		}
		if status == domain.StatusIdle {
			return nil
		}
	}
	return ErrNeverIdle
}
