// Package logging builds the slog loggers used across vidpress and defines
// the shared structured field vocabulary (component, job_id, stage) so daemon
// and CLI output stays consistent and greppable.
package logging
