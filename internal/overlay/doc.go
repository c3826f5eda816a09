// Package overlay defines the overlay directive model: a timed, positioned
// visual element (text, image, or video clip) composited onto a base video.
// Overlays are validated at submission time and persisted as a JSON list on
// the render job.
package overlay
