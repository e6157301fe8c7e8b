// Package canvas provides the drawing surface tracks render into.
//
// # Overview
//
// A [Surface] owns exactly one drawing [Context] and keeps its backing store
// in step with the logical size of the element it is mounted in:
//
//	backing width  = ceil(logical width)  × pixel ratio
//	backing height = ceil(logical height) × pixel ratio
//
// After every reallocation the surface applies a scale transform of the pixel
// ratio, so drawing code always works in logical (CSS) pixels.
//
// Width follows the [Host] the surface is attached to. Height is an explicit
// value owned by the track (collapsed or expanded).
//
// # Backends
//
// A [Backend] creates contexts of a given backing size:
//
//   - raster: PNG output drawn with fogleman/gg
//   - svg: an SVG document, one element per primitive
//
// # Paths
//
// [Path] records move/line/cubic segments and supports the canvas arcTo
// operation. Paths can be filled, stroked or used as a clip, and can answer
// point containment with the non-zero winding rule.
package canvas
