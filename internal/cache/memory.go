package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is the in-process hot layer
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory store. Entries written with a zero ttl never
// expire.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{cache: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a value from the memory store
func (m *Memory) Get(key string) ([]byte, bool) {
	if val, found := m.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a value with the given ttl
func (m *Memory) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.NoExpiration
	}
	m.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a value
func (m *Memory) Delete(key string) error {
	m.cache.Delete(key)
	return nil
}

// Clear removes all values
func (m *Memory) Clear() error {
	m.cache.Flush()
	return nil
}
