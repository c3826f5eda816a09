// Package ffprobe shells out to ffprobe to read container metadata. The
// render pipeline only needs the source duration, used to turn engine elapsed
// time into a progress fraction.
package ffprobe
