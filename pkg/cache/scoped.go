package cache

import (
	"context"
	"time"
)

// Prefixed wraps a cache so that every key is prefixed. Data sources use it
// to share one backend:
//
//	files := cache.Prefixed(backend, "file:")
//	mongo := cache.Prefixed(backend, "mongo:")
//
// Close is not forwarded; the owner of the inner cache closes it.
func Prefixed(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &prefixed{inner: inner, prefix: prefix}
}

type prefixed struct {
	inner  Cache
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, p.prefix+key, data, ttl)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Close() error { return nil }
