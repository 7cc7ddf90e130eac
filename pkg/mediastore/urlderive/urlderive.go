// Package urlderive derives thumbnail and video poster URLs from canonical
// asset URLs by pure string rewriting. No decoding, no network calls; every
// derivation is total and deterministic, so callers can derive speculatively
// on every render.
package urlderive

import (
	"fmt"
	"strings"

	"github.com/pawmarket/media-store/pkg/mediastore"
)

// DefaultMarker is the conventional upload-path segment the transformation
// parameters are spliced after.
const DefaultMarker = "/upload/"

// DefaultFallbackURL is returned whenever a URL cannot be transformed.
const DefaultFallbackURL = "/images/placeholder.jpg"

const (
	defaultThumbWidth  = 300
	defaultThumbHeight = 300
)

// TransformDeriver rewrites remote-backend URLs that carry the upload-path
// marker. Video URLs additionally get their extension rewritten to .jpg so
// the transform endpoint serves a still poster frame.
type TransformDeriver struct {
	Marker   string
	Fallback string
}

// NewTransformDeriver creates a deriver with the conventional marker and the
// given fallback placeholder (empty selects the default).
func NewTransformDeriver(fallback string) *TransformDeriver {
	if fallback == "" {
		fallback = DefaultFallbackURL
	}
	return &TransformDeriver{
		Marker:   DefaultMarker,
		Fallback: fallback,
	}
}

// ThumbnailURL implements mediastore.URLDeriver.
func (d *TransformDeriver) ThumbnailURL(assetURL string, kind mediastore.ResourceKind, spec mediastore.ThumbnailSpec) string {
	marker := d.Marker
	if marker == "" || assetURL == "" {
		return d.Fallback
	}

	idx := strings.Index(assetURL, marker)
	if idx < 0 {
		return d.Fallback
	}

	prefix := assetURL[:idx+len(marker)]
	rest := assetURL[idx+len(marker):]

	if kind == mediastore.ResourceKindVideo {
		rest = replaceExtension(rest, "jpg")
	}

	return prefix + transformSegment(kind, spec) + "/" + rest
}

// transformSegment renders the transformation-parameter path segment.
func transformSegment(kind mediastore.ResourceKind, spec mediastore.ThumbnailSpec) string {
	w := spec.Width
	if w <= 0 {
		w = defaultThumbWidth
	}
	h := spec.Height
	if h <= 0 {
		h = defaultThumbHeight
	}

	params := []string{
		fmt.Sprintf("w_%d", w),
		fmt.Sprintf("h_%d", h),
		"c_fill",
	}
	if kind == mediastore.ResourceKindVideo {
		params = append(params, fmt.Sprintf("so_%d", spec.OffsetSeconds))
	}
	return strings.Join(params, ",")
}

func replaceExtension(path, ext string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 && !strings.Contains(path[idx:], "/") {
		return path[:idx+1] + ext
	}
	return path + "." + ext
}

// FallbackDeriver always returns the fixed placeholder. The local backend has
// no transformation endpoint, so thumbnails cannot be derived for it; this is
// a documented limitation, not a defect.
type FallbackDeriver struct {
	Fallback string
}

// NewFallbackDeriver creates a deriver for backends without transform support.
func NewFallbackDeriver(fallback string) *FallbackDeriver {
	if fallback == "" {
		fallback = DefaultFallbackURL
	}
	return &FallbackDeriver{Fallback: fallback}
}

// ThumbnailURL implements mediastore.URLDeriver.
func (d *FallbackDeriver) ThumbnailURL(assetURL string, kind mediastore.ResourceKind, spec mediastore.ThumbnailSpec) string {
	return d.Fallback
}
