package urlderive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawmarket/media-store/pkg/mediastore"
	"github.com/pawmarket/media-store/pkg/mediastore/urlderive"
)

func TestTransformDeriver_VideoPoster(t *testing.T) {
	d := urlderive.NewTransformDeriver("")

	url := "https://media.example.com/v1/upload/videos/pet/abc123.mp4"
	got := d.ThumbnailURL(url, mediastore.ResourceKindVideo, mediastore.ThumbnailSpec{Width: 640, Height: 360, OffsetSeconds: 2})

	assert.Equal(t, "https://media.example.com/v1/upload/w_640,h_360,c_fill,so_2/videos/pet/abc123.jpg", got)
}

func TestTransformDeriver_ImageThumbnail(t *testing.T) {
	d := urlderive.NewTransformDeriver("")

	url := "https://media.example.com/v1/upload/images/pet/abc123.png"
	got := d.ThumbnailURL(url, mediastore.ResourceKindImage, mediastore.ThumbnailSpec{Width: 256, Height: 256})

	assert.Equal(t, "https://media.example.com/v1/upload/w_256,h_256,c_fill/images/pet/abc123.png", got)
}

func TestTransformDeriver_Deterministic(t *testing.T) {
	d := urlderive.NewTransformDeriver("")
	url := "https://media.example.com/v1/upload/videos/pet/clip.mp4"
	spec := mediastore.ThumbnailSpec{Width: 480, Height: 270}

	first := d.ThumbnailURL(url, mediastore.ResourceKindVideo, spec)
	second := d.ThumbnailURL(url, mediastore.ResourceKindVideo, spec)

	assert.Equal(t, first, second)
}

func TestTransformDeriver_FallbackOnMissingMarker(t *testing.T) {
	d := urlderive.NewTransformDeriver("/img/missing.jpg")

	tests := []struct {
		name string
		url  string
	}{
		{"no marker", "https://media.example.com/raw/videos/pet/abc.mp4"},
		{"empty url", ""},
		{"relative local path", "/videos/pet/abc.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.ThumbnailURL(tt.url, mediastore.ResourceKindVideo, mediastore.ThumbnailSpec{})
			assert.Equal(t, "/img/missing.jpg", got)
		})
	}
}

func TestTransformDeriver_DefaultDimensions(t *testing.T) {
	d := urlderive.NewTransformDeriver("")

	got := d.ThumbnailURL("https://m.example.com/upload/images/pet/x.jpg", mediastore.ResourceKindImage, mediastore.ThumbnailSpec{})

	assert.Contains(t, got, "w_300,h_300,c_fill")
}

func TestTransformDeriver_VideoWithoutExtension(t *testing.T) {
	d := urlderive.NewTransformDeriver("")

	got := d.ThumbnailURL("https://m.example.com/upload/videos/pet/abc", mediastore.ResourceKindVideo, mediastore.ThumbnailSpec{Width: 100, Height: 100})

	assert.Equal(t, "https://m.example.com/upload/w_100,h_100,c_fill,so_0/videos/pet/abc.jpg", got)
}

func TestFallbackDeriver(t *testing.T) {
	d := urlderive.NewFallbackDeriver("")

	got := d.ThumbnailURL("/videos/pet/abc.mp4", mediastore.ResourceKindVideo, mediastore.ThumbnailSpec{Width: 100, Height: 100})

	assert.Equal(t, urlderive.DefaultFallbackURL, got)
}
