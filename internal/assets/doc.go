// Package assets manages uploaded overlay media. Uploads are stored under
// UUID filenames in the configured assets directory and recorded in the job
// database; the Resolver maps overlay content references back to paths for
// the filter graph builder.
package assets
