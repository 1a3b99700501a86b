package history_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight"
	"github.com/finsight/finsight/demo/history"
)

func TestNewStore(t *testing.T) {
	t.Parallel()

	t.Run("creates memory store", func(t *testing.T) {
		t.Parallel()

		store, err := history.NewStore(history.StoreTypeMemory)
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.NoError(t, store.Close())
	})

	t.Run("redis store requires a client", func(t *testing.T) {
		t.Parallel()

		_, err := history.NewStore(history.StoreTypeRedis)
		assert.ErrorIs(t, err, history.ErrInvalidConfig)
	})

	t.Run("rejects unknown store type", func(t *testing.T) {
		t.Parallel()

		_, err := history.NewStore(history.StoreType("cassandra"))
		assert.ErrorIs(t, err, history.ErrInvalidStoreType)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newStore := func(t *testing.T) history.Store {
		t.Helper()
		store, err := history.NewStore(history.StoreTypeMemory)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	}

	t.Run("create stores meta and preamble in order", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		meta := history.Meta{StartedAt: "2026-04-01T10:00:00Z", ContextText: "Savings goal: $500.00"}
		preamble := []history.Record{
			{Role: finsight.RoleSystem, Text: "system prompt", TS: "2026-04-01T10:00:00Z"},
			{Role: finsight.RoleContext, Text: "Savings goal: $500.00", TS: "2026-04-01T10:00:00Z"},
			{Role: finsight.RoleAssistant, Text: "welcome", TS: "2026-04-01T10:00:01Z"},
		}
		require.NoError(t, store.Create(ctx, "sess-1", meta, preamble))

		got, err := store.Meta(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, meta, got)

		records, err := store.Window(ctx, "sess-1", 30)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, finsight.RoleSystem, records[0].Role)
		assert.Equal(t, finsight.RoleAssistant, records[2].Role)
	})

	t.Run("append extends the transcript", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		require.NoError(t, store.Create(ctx, "sess-1", history.Meta{}, nil))
		require.NoError(t, store.Append(ctx, "sess-1", history.Record{Role: finsight.RoleUser, Text: "how much did I spend?"}))
		require.NoError(t, store.Append(ctx, "sess-1", history.Record{Role: finsight.RoleAssistant, Text: "about $1,200"}))

		records, err := store.Window(ctx, "sess-1", 30)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "how much did I spend?", records[0].Text)
		assert.Equal(t, "about $1,200", records[1].Text)
	})

	t.Run("window keeps only the most recent records", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		require.NoError(t, store.Create(ctx, "sess-1", history.Meta{}, nil))
		for i := 0; i < 10; i++ {
			text := string(rune('a' + i))
			require.NoError(t, store.Append(ctx, "sess-1", history.Record{Role: finsight.RoleUser, Text: text}))
		}

		records, err := store.Window(ctx, "sess-1", 3)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "h", records[0].Text)
		assert.Equal(t, "j", records[2].Text)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)

		err := store.Append(ctx, "missing", history.Record{Role: finsight.RoleUser, Text: "hi"})
		assert.ErrorIs(t, err, finsight.ErrSessionNotFound)

		_, err = store.Window(ctx, "missing", 30)
		assert.ErrorIs(t, err, finsight.ErrSessionNotFound)

		_, err = store.Meta(ctx, "missing")
		assert.ErrorIs(t, err, finsight.ErrSessionNotFound)
	})

	t.Run("window copy is isolated from later appends", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		require.NoError(t, store.Create(ctx, "sess-1", history.Meta{}, []history.Record{
			{Role: finsight.RoleUser, Text: "first"},
		}))

		records, err := store.Window(ctx, "sess-1", 30)
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, "sess-1", history.Record{Role: finsight.RoleUser, Text: "second"}))

		assert.Len(t, records, 1)
	})
}
