package overlay

import (
	"encoding/json"
	"fmt"
	"strings"

	"vidpress/internal/services"
)

// Kind identifies how an overlay's content is interpreted.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Styling defaults applied to text overlays when the optional fields are unset.
const (
	DefaultFontColor      = "white"
	DefaultFontSize       = 36
	DefaultBoxColor       = "black@0.5"
	DefaultBoxBorderWidth = 5
)

// Overlay is one directive in a render job. For text overlays Content is the
// literal display string; for image/video overlays it is an absolute path or
// an asset filename. X and Y are fractions of the frame width/height in
// [0,1]; StartTime/EndTime bound visibility on the output timeline in
// seconds. The styling fields apply to text overlays only and are pointers so
// an absent field can fall back to its default.
type Overlay struct {
	Kind      Kind    `json:"type"`
	Content   string  `json:"content"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`

	Color      *string `json:"color,omitempty"`
	FontSize   *int    `json:"font_size,omitempty"`
	Box        *bool   `json:"box,omitempty"`
	BoxColor   *string `json:"box_color,omitempty"`
	BoxBorderW *int    `json:"box_borderw,omitempty"`
}

// IsMedia reports whether the overlay consumes an extra engine input.
func (o Overlay) IsMedia() bool {
	return o.Kind == KindImage || o.Kind == KindVideo
}

// FontColor returns the effective text color.
func (o Overlay) FontColor() string {
	if o.Color != nil {
		if color := strings.TrimSpace(*o.Color); color != "" {
			return color
		}
	}
	return DefaultFontColor
}

// EffectiveFontSize returns the configured font size or the default.
func (o Overlay) EffectiveFontSize() int {
	if o.FontSize != nil && *o.FontSize > 0 {
		return *o.FontSize
	}
	return DefaultFontSize
}

// BoxEnabled reports whether the text background box should be drawn.
func (o Overlay) BoxEnabled() bool {
	if o.Box != nil {
		return *o.Box
	}
	return true
}

// EffectiveBoxColor returns the configured box color or the default.
func (o Overlay) EffectiveBoxColor() string {
	if o.BoxColor != nil {
		if color := strings.TrimSpace(*o.BoxColor); color != "" {
			return color
		}
	}
	return DefaultBoxColor
}

// BoxBorderWidth returns the configured box padding or the default.
func (o Overlay) BoxBorderWidth() int {
	if o.BoxBorderW != nil && *o.BoxBorderW >= 0 {
		return *o.BoxBorderW
	}
	return DefaultBoxBorderWidth
}

// Validate checks a single overlay directive.
func (o Overlay) Validate() error {
	switch o.Kind {
	case KindText, KindImage, KindVideo:
	default:
		return services.Wrap(services.ErrValidation, "overlay", "validate",
			fmt.Sprintf("unknown overlay type %q", o.Kind), nil)
	}
	if strings.TrimSpace(o.Content) == "" {
		return services.Wrap(services.ErrValidation, "overlay", "validate", "content must not be empty", nil)
	}
	if o.X < 0 || o.X > 1 || o.Y < 0 || o.Y > 1 {
		return services.Wrap(services.ErrValidation, "overlay", "validate",
			fmt.Sprintf("position (%g, %g) outside [0,1]", o.X, o.Y), nil)
	}
	if o.StartTime < 0 {
		return services.Wrap(services.ErrValidation, "overlay", "validate", "start_time must not be negative", nil)
	}
	if o.EndTime <= o.StartTime {
		return services.Wrap(services.ErrValidation, "overlay", "validate",
			fmt.Sprintf("end_time %g must be after start_time %g", o.EndTime, o.StartTime), nil)
	}
	return nil
}

// ParseList decodes and validates a JSON array of overlays.
func ParseList(data []byte) ([]Overlay, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var overlays []Overlay
	if err := json.Unmarshal(data, &overlays); err != nil {
		return nil, services.Wrap(services.ErrValidation, "overlay", "parse", "invalid overlays payload", err)
	}
	for i, o := range overlays {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("overlay %d: %w", i, err)
		}
	}
	return overlays, nil
}

// MarshalList encodes overlays for persistence on a render job.
func MarshalList(overlays []Overlay) (string, error) {
	if overlays == nil {
		overlays = []Overlay{}
	}
	data, err := json.Marshal(overlays)
	if err != nil {
		return "", fmt.Errorf("marshal overlays: %w", err)
	}
	return string(data), nil
}

// DecodeStored decodes a persisted overlay list without re-validating. Rows
// written by older versions may carry kinds the current build no longer
// recognizes; the graph builder skips those.
func DecodeStored(raw string) ([]Overlay, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var overlays []Overlay
	if err := json.Unmarshal([]byte(raw), &overlays); err != nil {
		return nil, fmt.Errorf("decode stored overlays: %w", err)
	}
	return overlays, nil
}
