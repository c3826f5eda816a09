// Package ffmpeg wraps the ffmpeg CLI as the external render engine. It
// builds the argument list for a render plan, streams the -progress side
// channel line by line while the process runs, and converts elapsed output
// time into capped progress percentages.
package ffmpeg
