// Package render holds the drawing layer of the genome browser.
//
// Subpackages:
//
//   - [scale]: linear position and value scales
//   - [lanes]: overlap lane packing for interval tracks
//   - [canvas]: the drawing context interface, paths, colors and the
//     device-pixel-ratio aware [canvas.Surface]
//   - [canvas/raster]: PNG backend
//   - [canvas/svg]: SVG backend
//   - [hittest]: hover box registry
//
// This package itself converts SVG output to PDF or PNG with the external
// rsvg-convert tool (from librsvg):
//
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
package render
