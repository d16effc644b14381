package tracklight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/uxsignals/tracklight/pkg/tracklight/observability"
	"github.com/uxsignals/tracklight/pkg/tracklight/storage"
)

// stateKey is the single storage key holding the whole persisted blob.
// Individual counters and flags are fields inside that blob, never separate
// storage entries.
const stateKey = "tracklight"

// Field-name prefixes inside the blob. Gating flags and user property values
// live in segregated namespaces so an app-defined event name can never
// collide with an internal counter key.
const (
	onlyOncePrefix     = "onlyOnce_"
	userPropertyPrefix = "userProperty_"
)

// Bare internal fields inside the blob.
const (
	fieldColdLaunchCount = "coldLaunchCount"
	fieldAppVersion      = "appVersion"
	fieldBuild           = "build"
	fieldOSVersion       = "osVersion"
	fieldUserID          = "userID"
)

// stateCache is the in-memory mirror of the persisted blob. It loads at most
// once per process; every mutation rewrites the entire blob synchronously
// before returning, so a completed set call is durable.
type stateCache struct {
	store  storage.Store
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]any // nil until loaded
}

func newStateCache(store storage.Store, logger *slog.Logger) *stateCache {
	return &stateCache{
		store:  store,
		logger: logger,
	}
}

// ensureLoaded hydrates the cache from storage on first use. Concurrent
// callers serialize on the mutex and observe the same completed load. A read
// failure is treated as "no prior state" and logged.
func (s *stateCache) ensureLoaded(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)
}

func (s *stateCache) ensureLoadedLocked(ctx context.Context) {
	if s.cache != nil {
		return
	}

	s.cache = make(map[string]any)
	raw, err := s.store.GetItem(ctx, stateKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			observability.LogStorageWarning(s.logger, "load", err)
		}
		return
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		observability.LogStorageWarning(s.logger, "decode", err)
		return
	}
	s.cache = decoded
}

// set writes a field and persists the whole blob before returning.
// A nil value deletes the field.
func (s *stateCache) set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	if value == nil {
		delete(s.cache, key)
	} else {
		s.cache[key] = value
	}

	raw, err := json.Marshal(s.cache)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.store.SetItem(ctx, stateKey, string(raw)); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// getString reads a string field. ok is false when the field is absent or
// not a string.
func (s *stateCache) getString(ctx context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	v, ok := s.cache[key].(string)
	return v, ok
}

// getBool reads a boolean field, defaulting to false.
func (s *stateCache) getBool(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	v, _ := s.cache[key].(bool)
	return v
}

// getInt reads a numeric field. JSON round-trips numbers as float64; string
// values are parsed for compatibility with counters stored as text.
func (s *stateCache) getInt(ctx context.Context, key string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	switch v := s.cache[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}
