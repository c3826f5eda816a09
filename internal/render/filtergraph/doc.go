// Package filtergraph translates an ordered overlay list into an ffmpeg
// filter_complex graph. Construction is a fold over the overlays carrying the
// current output label, so overlays always compose in list order and media
// overlays stack in z-order.
package filtergraph
