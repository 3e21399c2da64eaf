// Package cache provides the key-addressable storage behind the
// verification verdict store: a memory layer for hot keys and a durable
// file-per-key disk layer.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store is the byte-oriented key/value contract. A ttl of zero means the
// entry never expires; verification verdicts are only removed by an
// explicit Delete or Clear.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the stable storage key for a namespaced value
func Key(value string) string {
	hash := sha256.Sum256([]byte(value))
	return "decoda:v1:" + hex.EncodeToString(hash[:])
}
