// Package workpool runs render jobs on a fixed set of workers with a
// bounded FIFO backlog. Submission never blocks; a full backlog is reported
// to the caller instead of applying backpressure to the HTTP layer.
package workpool
