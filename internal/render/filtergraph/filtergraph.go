package filtergraph

import (
	"fmt"
	"strconv"
	"strings"

	"vidpress/internal/overlay"
)

// AssetResolver turns a media overlay's content reference into a concrete
// filesystem path. Implementations fail with a services.ErrNotFound wrap when
// no file backs the reference.
type AssetResolver interface {
	Resolve(content string) (string, error)
}

// Graph is the processing-graph description handed to the engine. ExtraInputs
// are attached in order after the primary input, so the sub-chain for extra
// input k references engine input index k (index 0 is the primary video).
type Graph struct {
	FilterComplex string
	ExtraInputs   []string
	OutputLabel   string
}

// IsEmpty reports whether the graph contains no stages. Callers must then use
// the passthrough copy path instead of a filtered render.
func (g Graph) IsEmpty() bool {
	return g.FilterComplex == ""
}

// Build folds the overlay list into a filter graph. Each overlay consumes the
// current output label and produces a new one; overlays of unrecognized kind
// are skipped and do not advance the label counter. Media overlays are
// resolved through the supplied resolver; a failed resolution aborts the
// build.
func Build(overlays []overlay.Overlay, resolver AssetResolver) (Graph, error) {
	if len(overlays) == 0 {
		return Graph{}, nil
	}

	var (
		extraInputs []string
		chains      []string
	)

	currentLabel := "[0:v]"
	labelIndex := 0

	for _, o := range overlays {
		outLabel := fmt.Sprintf("[v%d]", labelIndex)

		var chain string
		switch {
		case o.Kind == overlay.KindText:
			chain = currentLabel + "drawtext=" + strings.Join(drawtextOptions(o), ":") + outLabel
		case o.IsMedia():
			if resolver == nil {
				return Graph{}, fmt.Errorf("media overlay %q requires an asset resolver", o.Content)
			}
			assetPath, err := resolver.Resolve(o.Content)
			if err != nil {
				return Graph{}, err
			}
			extraInputs = append(extraInputs, assetPath)
			chain = mediaChain(o, len(extraInputs), currentLabel, labelIndex, outLabel)
		default:
			// Unknown kind: contributes no stage.
			continue
		}

		chains = append(chains, chain)
		currentLabel = outLabel
		labelIndex++
	}

	if len(chains) == 0 {
		return Graph{}, nil
	}

	return Graph{
		FilterComplex: strings.Join(chains, "; "),
		ExtraInputs:   extraInputs,
		OutputLabel:   currentLabel,
	}, nil
}

func drawtextOptions(o overlay.Overlay) []string {
	opts := []string{
		fmt.Sprintf("text='%s'", escapeArg(o.Content)),
		"x=w*" + formatNumber(o.X),
		"y=h*" + formatNumber(o.Y),
		"fontcolor=" + escapeArg(o.FontColor()),
		"fontsize=" + strconv.Itoa(o.EffectiveFontSize()),
		enableExpr(o),
	}
	if o.BoxEnabled() {
		opts = append(opts,
			"box=1",
			"boxcolor="+escapeArg(o.EffectiveBoxColor()),
			"boxborderw="+strconv.Itoa(o.BoxBorderWidth()),
		)
	}
	return opts
}

// mediaChain scales the extra input into a 100x100 bounding box preserving
// aspect ratio, pads it to exactly 100x100 with transparent fill, and
// composites the result onto the current output, time-gated like text.
func mediaChain(o overlay.Overlay, inputIndex int, currentLabel string, labelIndex int, outLabel string) string {
	scaledLabel := fmt.Sprintf("[ov%d]", labelIndex)
	paddedLabel := fmt.Sprintf("[pad%d]", labelIndex)

	var b strings.Builder
	fmt.Fprintf(&b, "[%d:v]scale=100:100:force_original_aspect_ratio=decrease%s;", inputIndex, scaledLabel)
	fmt.Fprintf(&b, "%spad=100:100:(ow-iw)/2:(oh-ih)/2:color=black@0.0%s;", scaledLabel, paddedLabel)
	fmt.Fprintf(&b, "%s%soverlay=x=w*%s:y=h*%s:%s%s",
		currentLabel, paddedLabel, formatNumber(o.X), formatNumber(o.Y), enableExpr(o), outLabel)
	return b.String()
}

func enableExpr(o overlay.Overlay) string {
	return fmt.Sprintf("enable='between(t,%s,%s)'", formatNumber(o.StartTime), formatNumber(o.EndTime))
}

// escapeArg escapes the two filter-argument delimiters. Leaving either
// unescaped corrupts the graph description.
var argEscaper = strings.NewReplacer(":", `\:`, "'", `\'`)

func escapeArg(value string) string {
	return argEscaper.Replace(value)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
