// Package cache defines the storage for rendered responses that are served again until they expire
package cache

import (
	"context"
	"time"
)

// Cache stores rendered responses by key for a fixed time
type Cache interface {
	// Get returns the value stored under the given key. The boolean reports if a live entry has been found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value under the given key. It expires after the cache's TTL.
	Set(ctx context.Context, key string, value []byte) error
	// Purge removes all entries
	Purge(ctx context.Context) error
	// Close releases the resources held by the cache
	Close() error
}

// DefaultTTL is the time entries stay valid when nothing else is configured
const DefaultTTL = 50 * time.Second
