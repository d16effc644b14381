package tracklight

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxsignals/tracklight/pkg/tracklight/storage"
)

func TestStateCache_SetPersistsWholeBlob(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	state := newStateCache(store, nil)

	require.NoError(t, state.set(ctx, "coldLaunchCount", 2))
	require.NoError(t, state.set(ctx, "userID", "u-1"))

	raw, err := store.GetItem(ctx, stateKey)
	require.NoError(t, err)

	var blob map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &blob))
	assert.Equal(t, float64(2), blob["coldLaunchCount"])
	assert.Equal(t, "u-1", blob["userID"])
}

func TestStateCache_LoadsExistingBlob(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.SetItem(ctx, stateKey, `{"coldLaunchCount":7,"userID":"u-9"}`))

	state := newStateCache(store, nil)

	n, ok := state.getInt(ctx, "coldLaunchCount")
	require.True(t, ok)
	assert.Equal(t, 7, n)

	id, ok := state.getString(ctx, "userID")
	require.True(t, ok)
	assert.Equal(t, "u-9", id)
}

func TestStateCache_NilValueDeletesField(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	state := newStateCache(store, nil)

	require.NoError(t, state.set(ctx, "userID", "u-1"))
	require.NoError(t, state.set(ctx, "userID", nil))

	_, ok := state.getString(ctx, "userID")
	assert.False(t, ok)

	raw, err := store.GetItem(ctx, stateKey)
	require.NoError(t, err)
	assert.NotContains(t, raw, "userID")
}

func TestStateCache_CorruptBlobStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.SetItem(ctx, stateKey, "{not json"))

	state := newStateCache(store, nil)

	_, ok := state.getString(ctx, "userID")
	assert.False(t, ok)

	// Writes still work after a corrupt load.
	assert.NoError(t, state.set(ctx, "userID", "u-1"))
}

func TestStateCache_GetIntCoercions(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.SetItem(ctx, stateKey, `{"asNumber":3,"asString":"4","asText":"nope"}`))

	state := newStateCache(store, nil)

	n, ok := state.getInt(ctx, "asNumber")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = state.getInt(ctx, "asString")
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = state.getInt(ctx, "asText")
	assert.False(t, ok)

	_, ok = state.getInt(ctx, "absent")
	assert.False(t, ok)
}

func TestStateCache_GetBoolDefaultsFalse(t *testing.T) {
	ctx := context.Background()
	state := newStateCache(storage.NewMemoryStore(), nil)

	assert.False(t, state.getBool(ctx, "onlyOnce_our_first_open"))

	require.NoError(t, state.set(ctx, "onlyOnce_our_first_open", true))
	assert.True(t, state.getBool(ctx, "onlyOnce_our_first_open"))
}

func TestStateCache_LoadFailureTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Close())

	state := newStateCache(store, nil)

	_, ok := state.getString(ctx, "userID")
	assert.False(t, ok)
}
