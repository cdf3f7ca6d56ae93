// Package cache provides response caching for distributor API clients.
//
// Three backends are available:
//   - memory: In-process TTL cache with LRU eviction (default)
//   - file: File-based cache for CLI usage across invocations
//   - redis: Redis-backed cache for multi-instance server deployments
//
// A [NullCache] is provided for tests and for disabling caching entirely.
//
// Values are stored as opaque byte slices; callers JSON-encode on the way
// in and decode on the way out. Keys should be namespaced by distributor
// ("mouser:LM358", "digikey:296-1395-1-ND") to avoid collisions.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on miss or expiry.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
