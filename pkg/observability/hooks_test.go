package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Track hooks
	tr := NoopTrackHooks{}
	tr.OnRenderStart(ctx, "coverage", "dot")
	tr.OnRenderComplete(ctx, "coverage", "dot", time.Second, nil)
	tr.OnFetchDiscarded(ctx, "coverage", 3)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "coverage")
	c.OnCacheMiss(ctx, "chrom_info")
	c.OnCacheSet(ctx, "bands", 1024)

	// Source hooks
	s := NoopSourceHooks{}
	s.OnFetch(ctx, "coverage", time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Track().(NoopTrackHooks); !ok {
		t.Error("Track() should return NoopTrackHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Source() should return NoopSourceHooks by default")
	}

	// Set custom hooks
	customTrack := &testTrackHooks{}
	SetTrackHooks(customTrack)
	if Track() != customTrack {
		t.Error("SetTrackHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customSource := &testSourceHooks{}
	SetSourceHooks(customSource)
	if Source() != customSource {
		t.Error("SetSourceHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Track().(NoopTrackHooks); !ok {
		t.Error("Reset() should restore NoopTrackHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testTrackHooks{}
	SetTrackHooks(custom)

	// Setting nil should be ignored
	SetTrackHooks(nil)

	if Track() != custom {
		t.Error("SetTrackHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.OnRenderComplete(ctx, "cov", "dot", 10*time.Millisecond, nil)
	p.OnRenderComplete(ctx, "cov", "dot", 10*time.Millisecond, errors.New("boom"))
	p.OnFetchDiscarded(ctx, "cov", 1)
	p.OnCacheHit(ctx, "coverage")
	p.OnCacheSet(ctx, "coverage", 512)
	p.OnFetch(ctx, "coverage", time.Millisecond, nil)

	if got := testutil.ToFloat64(p.renders.WithLabelValues("dot", "ok")); got != 1 {
		t.Errorf("ok renders = %v", got)
	}
	if got := testutil.ToFloat64(p.renders.WithLabelValues("dot", "error")); got != 1 {
		t.Errorf("failed renders = %v", got)
	}
	if got := testutil.ToFloat64(p.discarded.WithLabelValues("cov")); got != 1 {
		t.Errorf("discarded = %v", got)
	}
	if got := testutil.ToFloat64(p.cacheBytes.WithLabelValues("coverage")); got != 512 {
		t.Errorf("cache bytes = %v", got)
	}
	if got := testutil.ToFloat64(p.fetches.WithLabelValues("coverage", "ok")); got != 1 {
		t.Errorf("fetches = %v", got)
	}
	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Errorf("gather: n=%d err=%v", n, err)
	}
}

// Test implementations
type testTrackHooks struct{ NoopTrackHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testSourceHooks struct{ NoopSourceHooks }
