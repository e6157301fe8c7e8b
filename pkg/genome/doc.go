// Package genome defines the render-ready entities that flow from a data
// source into the track renderers.
//
// All types here are plain values. A data source creates them, tracks read
// them, and nothing in the rendering engine mutates them except the derived
// [Band.Y1] and [Band.Y2] fields, which the band track fills in during layout.
//
// Coordinates are base pairs on a single chromosome and ranges are half-open
// ([start, end)). A zero-length range is legal and denotes a point feature.
package genome
