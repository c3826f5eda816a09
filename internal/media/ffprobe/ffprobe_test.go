package ffprobe

import "testing"

func TestDurationSeconds(t *testing.T) {
	result := Result{Format: Format{Duration: "123.45"}}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationSecondsHandlesPlaceholders(t *testing.T) {
	for _, raw := range []string{"", "  ", "N/A", "-3"} {
		result := Result{Format: Format{Duration: raw}}
		if got := result.DurationSeconds(); got != 0 {
			t.Fatalf("expected 0 for %q, got %v", raw, got)
		}
	}
}
