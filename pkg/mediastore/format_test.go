package mediastore

import "testing"

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"puppy.jpg", "jpg"},
		{"puppy.JPG", "jpg"},
		{"clip.mp4", "mp4"},
		{"archive.tar.gz", "png"}, // unknown extension defaults
		{"noextension", "png"},
		{"", "png"},
	}

	for _, tt := range tests {
		if got := FormatFromFilename(tt.name); got != tt.want {
			t.Errorf("FormatFromFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestKindForFormat(t *testing.T) {
	tests := []struct {
		format string
		want   ResourceKind
	}{
		{"jpg", ResourceKindImage},
		{"webp", ResourceKindImage},
		{"mp4", ResourceKindVideo},
		{"MOV", ResourceKindVideo},
		{"webm", ResourceKindVideo},
		{"xyz", ResourceKindImage}, // unknown formats classify as images
	}

	for _, tt := range tests {
		if got := KindForFormat(tt.format); got != tt.want {
			t.Errorf("KindForFormat(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestContentTypeForFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpg", "image/jpeg"},
		{"jpeg", "image/jpeg"},
		{"svg", "image/svg+xml"},
		{"mov", "video/quicktime"},
		{"xyz", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := ContentTypeForFormat(tt.format); got != tt.want {
			t.Errorf("ContentTypeForFormat(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestKnownFormat(t *testing.T) {
	if !KnownFormat("png") || !KnownFormat("WEBM") {
		t.Error("expected table formats to be known")
	}
	if KnownFormat("xyz") || KnownFormat("") {
		t.Error("expected unknown formats to be rejected")
	}
}
