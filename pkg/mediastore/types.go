package mediastore

import (
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the marketplace entity a media asset belongs to.
// Together with the resource kind it determines the storage partition, which
// never changes after creation.
type EntityType string

// Entity type constants (typed).
const (
	EntityTypePet      EntityType = "pet"
	EntityTypeBreed    EntityType = "breed"
	EntityTypeProvider EntityType = "provider"
	EntityTypeBlogPost EntityType = "blog_post"
	EntityTypeGeneral  EntityType = "general"
)

// Valid reports whether the entity type is one of the closed set.
func (e EntityType) Valid() bool {
	switch e {
	case EntityTypePet, EntityTypeBreed, EntityTypeProvider, EntityTypeBlogPost, EntityTypeGeneral:
		return true
	default:
		return false
	}
}

// ParseEntityType validates a raw entity type string.
func ParseEntityType(s string) (EntityType, error) {
	et := EntityType(s)
	if !et.Valid() {
		return "", ErrInvalidEntityType
	}
	return et, nil
}

// ResourceKind classifies an asset as image or video. It drives directory
// partitioning and which URL-derivation rules apply.
type ResourceKind string

// Resource kind constants (typed).
const (
	ResourceKindImage ResourceKind = "image"
	ResourceKindVideo ResourceKind = "video"
)

// Dir returns the physical directory (or key prefix) partition for the kind.
func (k ResourceKind) Dir() string {
	if k == ResourceKindVideo {
		return "videos"
	}
	return "images"
}

// Valid reports whether the resource kind is known.
func (k ResourceKind) Valid() bool {
	return k == ResourceKindImage || k == ResourceKindVideo
}

// MediaAsset is the persisted metadata record for one stored media file.
//
// PublicID ("{entityType}/{uniqueId}") is the stable handle used for deletion
// and URL regeneration; it is assigned once at creation and never reused,
// even after deletion. EntityID may be attached after the fact once the
// owning record exists; everything else is immutable.
type MediaAsset struct {
	ID               uuid.UUID    `json:"id"`
	PublicID         string       `json:"public_id"`
	OriginalFilename string       `json:"original_filename,omitempty"`
	URL              string       `json:"url"`
	SecureURL        string       `json:"secure_url"`
	ResourceKind     ResourceKind `json:"resource_kind"`
	Format           string       `json:"format"`
	Width            int          `json:"width,omitempty"`
	Height           int          `json:"height,omitempty"`
	Bytes            int64        `json:"bytes"`
	Duration         float64      `json:"duration,omitempty"`
	EntityType       EntityType   `json:"entity_type"`
	EntityID         *int64       `json:"entity_id,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// ThumbnailSpec describes the target representation for a derived thumbnail
// or video poster URL.
type ThumbnailSpec struct {
	Width  int
	Height int
	// OffsetSeconds selects the poster frame for video assets.
	OffsetSeconds int
}
