package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/relay/pkg/adapters/redis"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisLedger_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunCallLedgerContract(t, redis.NewLedger(client, "", 0))
}

func TestRedisLedger_Expires(t *testing.T) {
	mr, client := newClient(t)
	ledger := redis.NewLedger(client, "test:", time.Minute)
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, "run_1", []domain.ToolResult{{CallID: "c1", Output: "x"}}))
	assert.True(t, mr.Exists("test:run:run_1:answered"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := ledger.Lookup(ctx, "run_1", "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	session := domain.NewSession("session-ttl")
	session.ThreadID = "thread_1"

	require.NoError(t, store.Save(ctx, session))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, session.ID)

	// Key expiration happens in miniredis time.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned by wall clock.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("my-session")))

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "my-session")
}
