package storage_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxsignals/tracklight/pkg/tracklight/storage"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "analytics.db")

	store1, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)

	require.NoError(t, store1.SetItem(ctx, "tracklight", `{"coldLaunchCount":1}`))
	require.NoError(t, store1.Close())

	// Reopening the database sees the old value.
	store2, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	value, err := store2.GetItem(ctx, "tracklight")
	require.NoError(t, err)
	assert.Equal(t, `{"coldLaunchCount":1}`, value)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := storage.NewSQLiteStore("/nonexistent/path/analytics.db")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "concurrent.db"))
	require.NoError(t, err)
	defer store.Close()

	const numGoroutines = 20

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.SetItem(ctx, "shared", "value"))
			_, err := store.GetItem(ctx, "shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
