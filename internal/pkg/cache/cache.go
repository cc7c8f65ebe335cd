/*
Package cache provides a small string key-value cache with expiry.

Two implementations exist: Redis, for deployments that already run one, and an
in-process map with a periodic expiry sweep, used when no Redis address is configured.
*/
package cache

import (
	"context"
	"time"
)

// Cache is a string key-value store with per-key expiry.
type Cache interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes key. Removing a missing key is not an error.
	Del(ctx context.Context, key string) error

	Close() error
}
