package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxsignals/tracklight/pkg/tracklight/storage"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) storage.Store

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	ctx := context.Background()

	t.Run(name+"/Set_and_Get", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		err := store.SetItem(ctx, "counters", `{"coldLaunchCount":3}`)
		require.NoError(t, err)

		value, err := store.GetItem(ctx, "counters")
		require.NoError(t, err)
		assert.Equal(t, `{"coldLaunchCount":3}`, value)
	})

	t.Run(name+"/Get_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.GetItem(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run(name+"/Set_Overwrite", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.SetItem(ctx, "blob", "first"))
		require.NoError(t, store.SetItem(ctx, "blob", "second"))

		value, err := store.GetItem(ctx, "blob")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run(name+"/Set_EmptyValue", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.SetItem(ctx, "blob", ""))

		value, err := store.GetItem(ctx, "blob")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})

	t.Run(name+"/Remove", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.SetItem(ctx, "blob", "value"))
		require.NoError(t, store.RemoveItem(ctx, "blob"))

		_, err := store.GetItem(ctx, "blob")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run(name+"/Remove_Missing", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		assert.NoError(t, store.RemoveItem(ctx, "never-set"))
	})

	t.Run(name+"/Keys_Independent", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.SetItem(ctx, "a", "1"))
		require.NoError(t, store.SetItem(ctx, "b", "2"))
		require.NoError(t, store.RemoveItem(ctx, "a"))

		value, err := store.GetItem(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "2", value)
	})

	t.Run(name+"/Get_AfterClose", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		_, err := store.GetItem(ctx, "blob")
		assert.ErrorIs(t, err, storage.ErrStoreClosed)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContractTest(t, "Memory", func(t *testing.T) storage.Store {
		return storage.NewMemoryStore()
	})
}

func TestSQLiteStore_Contract(t *testing.T) {
	storeContractTest(t, "SQLite", func(t *testing.T) storage.Store {
		store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
		require.NoError(t, err)
		return store
	})
}

func TestRedisStore_Contract(t *testing.T) {
	storeContractTest(t, "Redis", func(t *testing.T) storage.Store {
		srv := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
		return storage.NewRedisStore(client)
	})
}
