// Package cache provides key/value caching for remote tag listings.
//
// Listing every tag of the Composer repository is the only network-bound
// operation the plugin performs, and its answer changes rarely. Tag sources
// store their results through the [Cache] interface so that repeated
// load_versions calls within the TTL do not hit the network.
//
// Three backends are provided:
//   - [FileCache]: per-user cache directory, the CLI default
//   - [RedisCache]: shared cache for the HTTP transport
//   - [NullCache]: disables caching (--no-cache and tests)
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the payload for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// NullCache never stores anything; every Get is a miss. The CLI uses it for
// --no-cache and when no cache directory can be determined.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
