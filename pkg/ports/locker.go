package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on a key (a thread or session ID) across processes.
// Lock blocks until the lock is held or ctx is done; the lock expires after ttl
// if the holder never calls the returned UnlockFunc.
type DistributedLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
