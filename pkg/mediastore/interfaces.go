package mediastore

import (
	"context"

	"github.com/google/uuid"
)

// Backend defines the interface for storage backends.
//
// Store must not leave a partially written object retrievable at the final
// public URL: on success the returned URLs are immediately readable, on
// failure nothing is readable. The caller owns cleanup of the temporary
// source file independent of this interface.
type Backend interface {
	// Store writes the bytes at req.SourcePath under the asset's partition
	// and returns the stored object with resolved delivery URLs.
	Store(ctx context.Context, req StoreRequest) (*StoredObject, error)

	// Delete removes the stored bytes for a public id. When format is known
	// (from the metadata record) the object is located directly; an empty
	// format falls back to scanning the partition for the unique-id prefix.
	Delete(ctx context.Context, publicID string, kind ResourceKind, format string) error

	// ResolveURL composes the delivery URL for a stored object without
	// touching the bytes.
	ResolveURL(publicID string, opts ResolveOptions) string
}

// StoreRequest carries everything a backend needs to store one asset.
type StoreRequest struct {
	SourcePath       string
	EntityType       EntityType
	UniqueID         string
	Kind             ResourceKind
	Format           string
	ContentType      string
	OriginalFilename string
}

// StoredObject is the backend's view of a successfully stored asset.
type StoredObject struct {
	PublicID  string
	Key       string
	URL       string
	SecureURL string
	Bytes     int64
	Kind      ResourceKind
	Format    string
}

// ResolveOptions control URL resolution for a stored object.
type ResolveOptions struct {
	Format string
	Kind   ResourceKind
	// Transform is an optional transformation-parameter segment spliced into
	// the URL by backends that support on-the-fly transforms.
	Transform string
}

// MetadataStore defines the interface for media asset metadata persistence.
// It is a thin record store with no business logic beyond persistence.
type MetadataStore interface {
	// Insert persists a new asset record, assigning the surrogate id and
	// creation time, and returns the canonical record.
	Insert(ctx context.Context, asset *MediaAsset) (*MediaAsset, error)

	// GetByID returns the asset for a surrogate id, or ErrAssetNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*MediaAsset, error)

	// GetByPublicID returns the asset for a public id, or ErrAssetNotFound.
	GetByPublicID(ctx context.Context, publicID string) (*MediaAsset, error)

	// ListByEntity returns all assets for an entity, newest first.
	ListByEntity(ctx context.Context, entityType EntityType, entityID int64) ([]*MediaAsset, error)

	// AttachEntity sets the owning entity id on an unassociated asset.
	// This is the only permitted mutation of a persisted record.
	AttachEntity(ctx context.Context, id uuid.UUID, entityID int64) error

	// Delete removes the asset record.
	Delete(ctx context.Context, id uuid.UUID) error
}

// URLDeriver derives transformation URLs (thumbnails, video posters) from a
// canonical asset URL by pure string rewriting. Implementations perform no
// decoding and no network calls and must never fail: a URL that cannot be
// transformed yields a fixed fallback placeholder.
type URLDeriver interface {
	ThumbnailURL(assetURL string, kind ResourceKind, spec ThumbnailSpec) string
}
