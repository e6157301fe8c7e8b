// Package pkg provides the libraries of Trackview, a genome browser track
// rendering engine.
//
// # Overview
//
// Trackview draws stacked genomic data tracks (copy-number coverage, B-allele
// frequency, gene and variant bands, the chromosome ideogram and a
// whole-genome overview) for one sample and region. Every track owns its own
// device-pixel-ratio aware surface and hit-test registry, and every viewport
// change flows back through a single session.
//
// # Architecture
//
// The typical data flow:
//
//	Data source (JSON files, HTTP, MongoDB)
//	         ↓
//	    [source] memoized, optionally persisted in a [cache] backend
//	         ↓
//	    [track] fetch → scale → lane packing → draw → hover boxes
//	         ↓
//	    [browser] stacks tracks, composes PNG/SVG, debounces resizes
//	         ↓
//	    [session] receives zoom, pan and highlight requests
//
// # Quick Start
//
//	cfg := config.Default("./data")
//	src, _ := file.New(cfg.Source.Dir)
//	sess, _ := session.New("s1", "1", genome.Range{Start: 0, End: 5e6})
//	b, _ := browser.New(cfg, sess, source.NewCached(src))
//	_ = b.RenderAll(ctx)
//	_ = b.ComposePNG(w)
//
// # Main Packages
//
// [genome] - Ranges, regions, dots, bands and chromosome reference data.
//
// [render/scale] - Linear scales with inverse mapping.
//
// [render/lanes] - Greedy lane packing of overlapping intervals.
//
// [render/canvas] - Drawing context interface with raster (fogleman/gg) and
// SVG backends, and the surface that tracks its backing store size.
//
// [render/hittest] - Hover box registry for the last drawn frame.
//
// [interaction] - Drag selection, the marker overlay and modifier keys.
//
// [track] - The track state machine and the dot, band, ideogram and overview
// variants.
//
// [session] - Viewport state with change notification.
//
// [source] - The data source interface, the memoizing wrapper and the file,
// HTTP and MongoDB implementations.
//
// [cache] - Generic in-process memo plus file, Redis and null byte caches.
//
// [config] - TOML configuration of the browser, cache, source and tracks.
//
// [observability] - Render, cache and fetch hooks with a Prometheus
// implementation.
//
// [errors] - Structured errors with machine-readable codes.
//
// [genome]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/genome
// [render/scale]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/render/scale
// [render/lanes]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/render/lanes
// [render/canvas]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/render/canvas
// [render/hittest]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/render/hittest
// [interaction]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/interaction
// [track]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/track
// [session]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/session
// [source]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/errors
// [browser]: https://pkg.go.dev/github.com/matzehuels/trackview/pkg/browser
package pkg
