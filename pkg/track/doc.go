// Package track renders genomic data tracks onto canvas surfaces.
//
// A [Track] composes a [canvas.Surface] that owns the drawing context, a
// [hittest.Registry] holding the boxes of the last frame, and a [Variant]
// that knows how to fetch and draw one kind of data. The variant set is
// closed: dots (coverage, B-allele frequency), bands (annotations,
// transcripts, variants), the chromosome ideogram and the whole-genome
// overview.
//
// # Life-cycle
//
// A track starts uninitialized. [Track.Initialize] attaches it to a host and
// allocates the backing store; every drawing method called before that
// fails with a NOT_INITIALIZED error. [Track.Render] draws a loading
// placeholder, fetches data outside the track lock, and commits the result
// only if no newer render was issued in the meantime. A failed fetch leaves
// an "unavailable" placeholder and returns a FETCH_FAILED error; the track
// stays resizable and collapsible.
//
// Scales are rebuilt from the view on every draw and never cached.
//
// # Interaction
//
// Hover and click look up the hit-test registry. Tracks with a genomic x
// axis also accept pointer drags, resolved by [interaction.DragSelect] into
// zoom or highlight requests sent to the [Viewport].
package track
