package ports

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID)
		session.AssistantID = "asst_1"
		session.ThreadID = "thread_1"
		session.ActiveRunID = "run_1"
		session.Answered["call_1"] = domain.ToolResult{CallID: "call_1", Output: "64 degrees"}

		err := store.Save(ctx, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "asst_1", loaded.AssistantID)
		assert.Equal(t, "thread_1", loaded.ThreadID)
		assert.Equal(t, "run_1", loaded.ActiveRunID)
		assert.Equal(t, "64 degrees", loaded.Answered["call_1"].Output)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Loaded Copy Is Isolated", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID)))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		if loaded.Answered == nil {
			loaded.Answered = map[string]domain.ToolResult{}
		}
		loaded.Answered["mutated"] = domain.ToolResult{CallID: "mutated"}

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotContains(t, again.Answered, "mutated")
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewSession(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		// Deleting twice is not an error.
		assert.NoError(t, store.Delete(ctx, sessionID))
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1))
		_ = store.Save(ctx, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		sort.Strings(sessions)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunCallLedgerContract verifies the behaviour shared by every CallLedger implementation.
func RunCallLedgerContract(t *testing.T, ledger CallLedger) {
	ctx := context.Background()

	t.Run("Lookup Unknown", func(t *testing.T) {
		_, ok, err := ledger.Lookup(ctx, "run_unknown", "call_1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Record and Lookup", func(t *testing.T) {
		err := ledger.Record(ctx, "run_1", []domain.ToolResult{
			{CallID: "c1", Output: "one"},
			{CallID: "c2", Output: "two"},
		})
		require.NoError(t, err)

		res, ok, err := ledger.Lookup(ctx, "run_1", "c2")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, domain.ToolResult{CallID: "c2", Output: "two"}, res)

		// Results are scoped to their run.
		_, ok, err = ledger.Lookup(ctx, "run_2", "c1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Forget", func(t *testing.T) {
		require.NoError(t, ledger.Record(ctx, "run_3", []domain.ToolResult{{CallID: "c1", Output: "x"}}))
		require.NoError(t, ledger.Forget(ctx, "run_3"))

		_, ok, err := ledger.Lookup(ctx, "run_3", "c1")
		require.NoError(t, err)
		assert.False(t, ok)

		// Forgetting an unknown run is a no-op.
		assert.NoError(t, ledger.Forget(ctx, "run_never"))
	})
}
