// Package cache stores computed consensus results keyed by their inputs.
//
// A consensus depends only on the dataset, the scoring scheme and the solver
// options, so identical requests can be answered from the cache. The CLI uses
// [FileCache] under the user cache directory; the API server can share a
// [RedisCache] between replicas. [NullCache] disables caching.
//
// Keys are produced by a [Keyer] so that callers never build key strings by
// hand:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ConsensusKey(cache.Hash(canonical), cache.ConsensusKeyOpts{Scheme: sc.String()})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Default TTLs per key type.
const (
	// TTLConsensus keeps computed consensus results for a week. Results are
	// deterministic, so expiry only bounds disk and memory use.
	TTLConsensus = 7 * 24 * time.Hour

	// TTLGraph keeps rendered dominance graphs for a day.
	TTLGraph = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported with hit == false
	// and a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
