package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

const maxDiagnosticLines = 20

// parseProgressLine extracts elapsed output time in seconds from a progress
// channel line. ffmpeg reports "out_time_ms" in microseconds despite the
// name, and emits "N/A" before the first frame is written; non-numeric
// values are skipped rather than treated as errors.
func parseProgressLine(line string) (float64, bool) {
	value, found := strings.CutPrefix(strings.TrimSpace(line), "out_time_ms=")
	if !found {
		return 0, false
	}
	micros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || micros < 0 {
		return 0, false
	}
	return float64(micros) / 1e6, true
}

// progressPercent converts elapsed output time into a percentage capped at
// 99 so that 100 stays reserved for confirmed process success.
func progressPercent(elapsedSeconds, durationSeconds float64) float64 {
	percent := elapsedSeconds / durationSeconds * 100
	if percent < 0 {
		return 0
	}
	if percent > 99 {
		return 99
	}
	return percent
}

// diagnosticTail keeps the last few non-progress stderr lines so a failed
// run can surface what ffmpeg actually complained about.
type diagnosticTail struct {
	limit int
	lines []string
}

func newDiagnosticTail(limit int) *diagnosticTail {
	return &diagnosticTail{limit: limit}
}

func (d *diagnosticTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || isProgressKey(line) {
		return
	}
	d.lines = append(d.lines, line)
	if len(d.lines) > d.limit {
		d.lines = d.lines[len(d.lines)-d.limit:]
	}
}

// wrap annotates err with the captured tail, if any.
func (d *diagnosticTail) wrap(err error) error {
	if err == nil || len(d.lines) == 0 {
		return err
	}
	return fmt.Errorf("%w: %s", err, strings.Join(d.lines, "; "))
}

// isProgressKey reports whether the line is part of the key=value progress
// block rather than a real diagnostic.
func isProgressKey(line string) bool {
	key, _, found := strings.Cut(line, "=")
	if !found {
		return false
	}
	switch key {
	case "frame", "fps", "stream_0_0_q", "bitrate", "total_size",
		"out_time_us", "out_time_ms", "out_time", "dup_frames",
		"drop_frames", "speed", "progress":
		return true
	}
	return false
}
