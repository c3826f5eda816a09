// Package queue persists render jobs and overlay assets in SQLite.
//
// The Store manages database connections, schema initialization, busy-retry
// policy, and the status transitions that back the public job lifecycle
// (pending, processing, done, error). Jobs carry the uploaded source path,
// the overlay definitions the client submitted, a progress percentage, and
// a human-readable status message.
//
// The database is treated as transient storage for in-flight work rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users delete the database to adopt the new schema.
package queue
