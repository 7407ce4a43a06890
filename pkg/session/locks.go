package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Locks serializes work per key. Entries are reference counted and removed
// once no goroutine holds or waits on them.
type Locks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry

	locker ports.DistributedLocker // Optional distributed locker
	ttl    time.Duration
	logger *slog.Logger
}

// LocksOption configures Locks.
type LocksOption func(*Locks)

// WithDistributedLocker additionally takes a cross-process lock for every key.
func WithDistributedLocker(locker ports.DistributedLocker, ttl time.Duration) LocksOption {
	return func(l *Locks) {
		l.locker = locker
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLocksLogger configures the logger used for deferred unlock failures.
func WithLocksLogger(logger *slog.Logger) LocksOption {
	return func(l *Locks) {
		l.logger = logger
	}
}

// NewLocks creates an empty set of keyed locks.
func NewLocks(opts ...LocksOption) *Locks {
	l := &Locks{
		entries: make(map[string]*lockEntry),
		ttl:     DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (l *Locks) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[key]
	if !exists {
		entry = &lockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *Locks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(l.entries, key)
	}
}

// Len returns the number of live entries.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// WithLock executes fn while holding the lock for key.
func (l *Locks) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := l.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.release(key)
	}()

	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx, key, l.ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				l.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
