package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used when no redis is configured
type MemoryStore struct {
	items map[string]memoryItem
	mu    sync.RWMutex
	now   func() time.Time
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func (item memoryItem) expired(now time.Time) bool {
	return !item.expiresAt.IsZero() && now.After(item.expiresAt)
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Get returns the value of key, or ErrCacheMiss once it has expired
func (store *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	store.mu.RLock()
	item, exists := store.items[key]
	store.mu.RUnlock()

	if !exists {
		return nil, ErrCacheMiss
	}

	if now := store.now(); item.expired(now) {
		store.dropIfExpired(key, now)
		return nil, ErrCacheMiss
	}

	copied := make([]byte, len(item.value))
	copy(copied, item.value)
	return copied, nil
}

// dropIfExpired deletes key only if the entry currently stored is still expired at now,
// so a value written by a concurrent Set survives
func (store *MemoryStore) dropIfExpired(key string, now time.Time) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	item, exists := store.items[key]
	if !exists || !item.expired(now) {
		return false
	}
	delete(store.items, key)
	return true
}

// Set stores a copy of value under key
func (store *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	copied := make([]byte, len(value))
	copy(copied, value)

	item := memoryItem{value: copied}
	if ttl > 0 {
		item.expiresAt = store.now().Add(ttl)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.items[key] = item
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (store *MemoryStore) Delete(ctx context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.items, key)
	return nil
}

// Len returns the number of stored keys, expired ones included
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.items)
}

// Sweep drops every expired key and returns how many were removed
func (store *MemoryStore) Sweep() int {
	now := store.now()

	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0
	for key, item := range store.items {
		if item.expired(now) {
			delete(store.items, key)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done
func (store *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep()
		}
	}
}
