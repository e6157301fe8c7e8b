package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/trackview/pkg/observability"
)

// DefaultMemoLimit bounds a memo created without WithLimit.
const DefaultMemoLimit = 256

// Memo caches values of type V by key. The zero value is not usable; create
// one with NewMemo.
//
// Entries live until they are invalidated or until the memo is full, in
// which case the least recently used entry is evicted. A fetch that was
// started before an invalidation still returns its value to the caller but
// does not populate the memo.
type Memo[K comparable, V any] struct {
	name  string
	size  func(V) int
	group singleflight.Group

	mu      sync.Mutex
	entries *lru.Cache[K, V]
	gen     uint64
}

// MemoOption configures a Memo.
type MemoOption[V any] func(*memoOptions[V])

type memoOptions[V any] struct {
	size  func(V) int
	limit int
}

// WithSizer reports the size of a stored value to the cache hooks, e.g.
// the number of dots in a response.
func WithSizer[V any](fn func(V) int) MemoOption[V] {
	return func(o *memoOptions[V]) { o.size = fn }
}

// WithLimit sets the number of entries kept. Values below one select
// DefaultMemoLimit.
func WithLimit[V any](n int) MemoOption[V] {
	return func(o *memoOptions[V]) { o.limit = n }
}

// NewMemo creates an empty memo. name identifies it in cache hooks.
func NewMemo[K comparable, V any](name string, opts ...MemoOption[V]) *Memo[K, V] {
	o := memoOptions[V]{limit: DefaultMemoLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit < 1 {
		o.limit = DefaultMemoLimit
	}
	// lru.New only fails for non-positive sizes.
	entries, _ := lru.New[K, V](o.limit)
	return &Memo[K, V]{
		name:    name,
		size:    o.size,
		entries: entries,
	}
}

// Name returns the memo name.
func (m *Memo[K, V]) Name() string { return m.name }

// Get returns the value for key, calling fetch on a miss. Concurrent misses
// for the same key share a single fetch. Errors are not cached.
func (m *Memo[K, V]) Get(ctx context.Context, key K, fetch func(context.Context) (V, error)) (V, error) {
	hooks := observability.Cache()

	m.mu.Lock()
	if v, ok := m.entries.Get(key); ok {
		m.mu.Unlock()
		hooks.OnCacheHit(ctx, m.name)
		return v, nil
	}
	gen := m.gen
	m.mu.Unlock()
	hooks.OnCacheMiss(ctx, m.name)

	flight := fmt.Sprintf("%d/%#v", gen, key)
	res, err, _ := m.group.Do(flight, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		stored := m.gen == gen
		if stored {
			m.entries.Add(key, v)
		}
		m.mu.Unlock()
		if stored {
			size := 0
			if m.size != nil {
				size = m.size(v)
			}
			hooks.OnCacheSet(ctx, m.name, size)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Peek returns a stored value without fetching.
func (m *Memo[K, V]) Peek(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries.Peek(key)
}

// Len returns the number of stored entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries.Len()
}

// Invalidate discards all entries and in-flight fetches.
func (m *Memo[K, V]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Purge()
	m.gen++
}

// InvalidateFunc discards the entries whose key matches and reports how
// many were removed. In-flight fetches are discarded as well.
func (m *Memo[K, V]) InvalidateFunc(match func(K) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.entries.Keys() {
		if match(k) {
			m.entries.Remove(k)
			n++
		}
	}
	m.gen++
	return n
}
