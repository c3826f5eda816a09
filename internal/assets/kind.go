package assets

import (
	"path/filepath"
	"strings"
)

// Asset kinds mirror the overlay kinds that reference uploaded media.
const (
	KindImage = "image"
	KindVideo = "video"
)

// DetectKind classifies an upload as image or video, preferring the declared
// content type and falling back to the filename extension. Uploads that match
// neither are treated as video.
func DetectKind(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return KindImage
	case ".mp4", ".mov", ".mkv":
		return KindVideo
	}
	return KindVideo
}
