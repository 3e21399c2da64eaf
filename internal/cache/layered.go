package cache

import "time"

// Layered combines the memory and disk stores: reads promote disk hits into
// memory, writes land in both.
type Layered struct {
	memory Store
	disk   Store
}

// NewLayered creates a layered store with disk persistence at diskDir
func NewLayered(memoryTTL time.Duration, diskDir string) *Layered {
	return &Layered{
		memory: NewMemory(memoryTTL, 10*time.Minute),
		disk:   NewDisk(diskDir),
	}
}

// Get checks memory first, then disk, promoting disk hits
func (l *Layered) Get(key string) ([]byte, bool) {
	if val, found := l.memory.Get(key); found {
		return val, true
	}

	if val, found := l.disk.Get(key); found {
		_ = l.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (l *Layered) Set(key string, value []byte, ttl time.Duration) error {
	if err := l.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return l.disk.Set(key, value, ttl)
}

// Delete removes a key from both layers
func (l *Layered) Delete(key string) error {
	_ = l.memory.Delete(key)
	return l.disk.Delete(key)
}

// Clear removes all keys from both layers
func (l *Layered) Clear() error {
	_ = l.memory.Clear()
	return l.disk.Clear()
}
