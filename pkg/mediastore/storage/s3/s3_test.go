package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmarket/media-store/pkg/mediastore"
)

func TestS3Backend_Configuration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{
			Region:        "us-east-1",
			PublicBaseURL: "https://media.example.com/v1/upload",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("EmptyPublicBaseURL", func(t *testing.T) {
		_, err := New(Config{Bucket: "media-bucket"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "public base URL is required")
	})

	t.Run("StaticCredentials", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "media-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			PublicBaseURL:   "https://media.example.com/v1/upload/",
		})
		require.NoError(t, err)
		require.NotNil(t, backend)
		// Trailing slash trimmed from the delivery base
		assert.Equal(t, "https://media.example.com/v1/upload", backend.publicBaseURL)
	})
}

func TestS3Backend_ResolveURL(t *testing.T) {
	backend, err := New(Config{
		Bucket:          "media-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		PublicBaseURL:   "https://media.example.com/v1/upload",
	})
	require.NoError(t, err)

	url := backend.ResolveURL("pet/uid-1", mediastore.ResolveOptions{
		Kind:   mediastore.ResourceKindVideo,
		Format: "mp4",
	})
	assert.Equal(t, "https://media.example.com/v1/upload/videos/pet/uid-1.mp4", url)

	withTransform := backend.ResolveURL("pet/uid-1", mediastore.ResolveOptions{
		Kind:      mediastore.ResourceKindVideo,
		Format:    "mp4",
		Transform: "w_640,h_360,c_fill",
	})
	assert.Equal(t, "https://media.example.com/v1/upload/w_640,h_360,c_fill/videos/pet/uid-1.mp4", withTransform)
}
