// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about track rendering, data-source calls and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so library packages only
// depend on the interfaces below. [Prometheus] implements all of them.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	    observability.SetTrackHooks(m)
//	    observability.SetCacheHooks(m)
//	    observability.SetSourceHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Track().OnRenderStart(ctx, id, kind)
//	// ... fetch and draw ...
//	observability.Track().OnRenderComplete(ctx, id, kind, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Track Hooks
// =============================================================================

// TrackHooks receives events from the track render life-cycle.
type TrackHooks interface {
	// Render events
	OnRenderStart(ctx context.Context, trackID, kind string)
	OnRenderComplete(ctx context.Context, trackID, kind string, duration time.Duration, err error)

	// OnFetchDiscarded records a fetch result dropped because a newer render
	// was issued while it was in flight.
	OnFetchDiscarded(ctx context.Context, trackID string, token uint64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Source Hooks
// =============================================================================

// SourceHooks receives events from data-source calls.
type SourceHooks interface {
	// OnFetch records one completed call, e.g. "coverage" or "chrom_info".
	OnFetch(ctx context.Context, call string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTrackHooks is a no-op implementation of TrackHooks.
type NoopTrackHooks struct{}

func (NoopTrackHooks) OnRenderStart(context.Context, string, string) {}
func (NoopTrackHooks) OnRenderComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopTrackHooks) OnFetchDiscarded(context.Context, string, uint64) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnFetch(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	trackHooks  TrackHooks  = NoopTrackHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	sourceHooks SourceHooks = NoopSourceHooks{}
	hooksMu     sync.RWMutex
)

// SetTrackHooks registers custom track hooks.
// This should be called once at application startup before any rendering.
func SetTrackHooks(h TrackHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		trackHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSourceHooks registers custom data-source hooks.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// Track returns the registered track hooks.
func Track() TrackHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return trackHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Source returns the registered data-source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	trackHooks = NoopTrackHooks{}
	cacheHooks = NoopCacheHooks{}
	sourceHooks = NoopSourceHooks{}
}
