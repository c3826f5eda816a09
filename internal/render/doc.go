// Package render drives individual render jobs end to end: it loads the job
// row, rebuilds the overlay filter graph, probes the source duration,
// invokes the ffmpeg engine, and persists progress and the terminal state.
package render
