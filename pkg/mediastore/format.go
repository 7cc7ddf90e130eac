package mediastore

import (
	"path/filepath"
	"strings"
)

// DefaultFormat is assumed when no usable extension is present.
const DefaultFormat = "png"

// contentTypes is the fixed extension lookup table used when negotiating the
// content type of an upload. Unknown extensions fall back to a generic type
// rather than rejecting the upload.
var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"webm": "video/webm",
}

var videoFormats = map[string]bool{
	"mp4":  true,
	"mov":  true,
	"webm": true,
}

// FormatFromFilename extracts the lower-cased extension from a filename.
// Missing or unknown extensions default rather than reject.
func FormatFromFilename(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !KnownFormat(ext) {
		return DefaultFormat
	}
	return ext
}

// KindForFormat classifies a format as image or video. Unknown formats are
// treated as images, matching the defensive default for unknown extensions.
func KindForFormat(format string) ResourceKind {
	if videoFormats[strings.ToLower(format)] {
		return ResourceKindVideo
	}
	return ResourceKindImage
}

// ContentTypeForFormat negotiates the content type for a format from the
// fixed lookup table.
func ContentTypeForFormat(format string) string {
	if ct, ok := contentTypes[strings.ToLower(format)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// KnownFormat reports whether the format appears in the lookup table.
func KnownFormat(format string) bool {
	_, ok := contentTypes[strings.ToLower(format)]
	return ok
}
