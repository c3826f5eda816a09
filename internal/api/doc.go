// Package api exposes the render pipeline over HTTP: job creation with a
// multipart video upload and overlay JSON, job status and result download,
// and overlay asset management. Responses are JSON; errors use a small
// code/message envelope.
package api
