package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	renders       *prometheus.CounterVec
	renderSeconds *prometheus.HistogramVec
	discarded     *prometheus.CounterVec
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchSeconds  *prometheus.HistogramVec
}

var (
	_ TrackHooks  = (*Prometheus)(nil)
	_ CacheHooks  = (*Prometheus)(nil)
	_ SourceHooks = (*Prometheus)(nil)
)

// NewPrometheus creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackview",
			Name:      "track_renders_total",
			Help:      "Completed track renders by kind and outcome.",
		}, []string{"kind", "outcome"}),
		renderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trackview",
			Name:      "track_render_seconds",
			Help:      "Track render latency including the data fetch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackview",
			Name:      "track_stale_fetches_total",
			Help:      "Fetch results dropped because a newer render superseded them.",
		}, []string{"track"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackview",
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackview",
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the persistent cache.",
		}, []string{"key_type"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackview",
			Name:      "source_fetches_total",
			Help:      "Data-source calls by call and outcome.",
		}, []string{"call", "outcome"}),
		fetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trackview",
			Name:      "source_fetch_seconds",
			Help:      "Data-source call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"call"}),
	}
	if reg != nil {
		reg.MustRegister(p.renders, p.renderSeconds, p.discarded, p.cacheOps, p.cacheBytes, p.fetches, p.fetchSeconds)
	}
	return p
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnRenderStart(context.Context, string, string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, _ string, kind string, d time.Duration, err error) {
	p.renders.WithLabelValues(kind, outcome(err)).Inc()
	p.renderSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *Prometheus) OnFetchDiscarded(_ context.Context, trackID string, _ uint64) {
	p.discarded.WithLabelValues(trackID).Inc()
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnFetch(_ context.Context, call string, d time.Duration, err error) {
	p.fetches.WithLabelValues(call, outcome(err)).Inc()
	p.fetchSeconds.WithLabelValues(call).Observe(d.Seconds())
}
