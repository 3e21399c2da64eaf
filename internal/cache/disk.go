package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Disk implements file-per-key persistence. Each key is independently
// readable and writable without loading the rest of the corpus.
type Disk struct {
	dir string
}

// NewDisk creates a disk store rooted at dir
func NewDisk(dir string) *Disk {
	return &Disk{dir: dir}
}

type diskEntry struct {
	Data      []byte     `json:"data"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // Absent for durable entries
}

// Get retrieves a value. A malformed or expired file reads as a miss; the
// expired file is removed.
func (d *Disk) Get(key string) ([]byte, bool) {
	path := d.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.ExpiresAt != nil && time.Now().After(*entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value. A zero ttl writes a durable entry with no expiry.
func (d *Disk) Set(key string, value []byte, ttl time.Duration) error {
	entry := diskEntry{Data: value}
	if ttl > 0 {
		expires := time.Now().Add(ttl)
		entry.ExpiresAt = &expires
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(d.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete removes a single key
func (d *Disk) Delete(key string) error {
	return os.Remove(d.path(key))
}

// Clear removes every entry
func (d *Disk) Clear() error {
	return os.RemoveAll(d.dir)
}

func (d *Disk) path(key string) string {
	return filepath.Join(d.dir, key+".cache")
}
