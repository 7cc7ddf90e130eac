package mediastore

import (
	"context"

	"github.com/google/uuid"
)

// Service is the public entry point gluing identifier generation, the storage
// backend, URL derivation and the metadata store together.
type Service interface {
	// UploadMedia validates the source file, stores the bytes on the active
	// backend, persists the metadata record and returns the canonical asset.
	// Any failure aborts the operation with no partial asset returned; a
	// retry gets a fresh unique id.
	UploadMedia(ctx context.Context, req UploadRequest) (*MediaAsset, error)

	// DeleteMedia removes the stored bytes and the metadata record for a
	// public id. It returns true only if both succeed. The metadata record's
	// kind takes precedence over the caller's when the two disagree.
	DeleteMedia(ctx context.Context, publicID string, kind ResourceKind) (bool, error)

	// GetAsset returns an asset by surrogate id.
	GetAsset(ctx context.Context, id uuid.UUID) (*MediaAsset, error)

	// GetAssetByPublicID returns an asset by its stable public handle.
	GetAssetByPublicID(ctx context.Context, publicID string) (*MediaAsset, error)

	// ListByEntity returns all assets for an entity, newest first.
	ListByEntity(ctx context.Context, entityType EntityType, entityID int64) ([]*MediaAsset, error)

	// AttachEntity associates an unassociated asset with its owning entity
	// record. Metadata-only; the stored bytes are untouched.
	AttachEntity(ctx context.Context, id uuid.UUID, entityID int64) error

	// ThumbnailURL derives a thumbnail (or video poster) URL for an asset.
	// Purely textual; safe to call speculatively on every render.
	ThumbnailURL(asset *MediaAsset, spec ThumbnailSpec) string
}

// UploadRequest contains parameters for uploading a media asset.
type UploadRequest struct {
	// SourcePath references an existing, readable file at call time,
	// typically the HTTP layer's temporary upload file.
	SourcePath string

	EntityType EntityType

	// EntityID is nil for assets uploaded before the owning record exists.
	EntityID *int64

	// OriginalFilename is preserved for display and drives format detection.
	OriginalFilename string

	// KindHint overrides extension-based resource kind detection when set.
	KindHint ResourceKind
}
