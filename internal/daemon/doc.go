// Package daemon ties the pieces of the render service together: it owns
// the single-instance lock file, recovers jobs interrupted by a previous
// run, and manages the lifecycle of the HTTP API and the worker pool.
package daemon
