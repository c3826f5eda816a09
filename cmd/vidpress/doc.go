// Package main hosts the vidpress CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the render daemon: submitting videos with overlay JSON,
// inspecting and downloading jobs, managing overlay assets, and
// configuration scaffolding.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
