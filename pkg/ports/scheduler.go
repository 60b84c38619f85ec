package ports

import "time"

// Deadline reports how much of the current idle slice is left.
type Deadline interface {
	TimeRemaining() time.Duration
}

// IdleScheduler grants idle slices. RequestIdleSlice schedules callback to run
// once the host judges itself idle; each request is served at most once.
type IdleScheduler interface {
	RequestIdleSlice(callback func(Deadline))
}
