package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a process-local Cache used in test mode (spec §6:
// DATABASE_TYPE=sqlite implies no external Redis dependency either).
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache constructs an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}}
}

func (m *MemoryCache) Get(_ context.Context, key string, value interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || (!e.expiresAt.IsZero() && time.Now().UTC().After(e.expiresAt)) {
		return ErrNotFound
	}
	return json.Unmarshal(e.data, value)
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().UTC().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: expires}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().UTC().After(e.expiresAt) {
		return false, nil
	}
	return true, nil
}

func (m *MemoryCache) Flush(_ context.Context) error {
	m.mu.Lock()
	m.entries = map[string]memoryEntry{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Close() error { return nil }
