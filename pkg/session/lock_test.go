package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, session *domain.Session) error { return nil }
func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *MockStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, domain.NewSession(sid))
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := mgr.locks.Len(); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}

func TestLocks_SerializesSameKey(t *testing.T) {
	locks := NewLocks()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = locks.WithLock(ctx, "thread_1", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside, "appends to one thread must never overlap")
	assert.Equal(t, 0, locks.Len())
}

type fakeLocker struct {
	locked   []string
	unlocked int
	err      error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.locked = append(f.locked, key)
	return func(ctx context.Context) error {
		f.unlocked++
		return nil
	}, nil
}

func TestLocks_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	locks := NewLocks(WithDistributedLocker(locker, time.Second))

	err := locks.WithLock(context.Background(), "thread_1", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, []string{"thread_1"}, locker.locked)
	assert.Equal(t, 1, locker.unlocked)

	locker.err = errors.New("redis down")
	called := false
	err = locks.WithLock(context.Background(), "thread_1", func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "distributed lock")
	assert.False(t, called)
}
