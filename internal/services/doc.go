// Package services defines shared utilities consumed by the render pipeline
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp render job IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (asset missing vs engine failure vs bad input) uniform
//     across the pipeline.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// stays consistent.
package services
