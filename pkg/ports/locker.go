package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock. Releasing a
// lock that already expired is not an error.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on one container across processes, so two
// replicas never dispatch into the same container at once.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx ends. The hold lapses after ttl if
	// the returned UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
