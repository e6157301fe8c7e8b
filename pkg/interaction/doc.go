// Package interaction turns pointer gestures on a track into genomic actions.
//
// [DragSelect] follows a drag across the plot area, exposes the translucent
// selection [Marker] to draw, and on release resolves the pixel span through
// an inverse scale into either a zoom request (zoom modifier held) or a new
// highlight. In marker mode a gesture instead leaves a persistent marker on
// the track with an optional close affordance.
//
// Held keys live in an explicit [Modifiers] value owned by the view that
// receives keyboard events; nothing here reads global input state.
package interaction
