// Package cache provides byte caches for data-source responses and a generic
// in-memory memo for decoded values.
//
// # Byte caches
//
// [Cache] is a small key/value interface with TTLs. Three implementations
// are provided:
//
//   - [NullCache]: never stores anything
//   - [FileCache]: JSON entry files below a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//
// [Prefixed] namespaces any cache, so several data sources can share one
// backend without key collisions.
//
// # Memo
//
// [Memo] caches decoded values keyed by any comparable type in a bounded
// LRU. Concurrent lookups of the same key share one fetch, and
// [Memo.Invalidate] discards entries along with fetches that are still in
// flight.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values.
//
// Get reports a miss with ok == false and a nil error. Expired entries are
// misses. A ttl of zero in Set means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
