package mediastore

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/pawmarket/media-store/pkg/mediastore/assetid"
)

// Placeholder dimensions recorded when introspection of the stored bytes is
// unavailable. Collaborators treat them as estimates.
const (
	placeholderImageWidth  = 800
	placeholderImageHeight = 600
	placeholderVideoWidth  = 1280
	placeholderVideoHeight = 720
)

// service implements the Service interface
type service struct {
	store   MetadataStore
	backend Backend
	deriver URLDeriver
	logger  *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithMetadataStore sets the metadata store for the service
func WithMetadataStore(store MetadataStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithBackend sets the active storage backend for the service
func WithBackend(backend Backend) Option {
	return func(s *service) {
		s.backend = backend
	}
}

// WithURLDeriver sets the thumbnail URL deriver for the service
func WithURLDeriver(deriver URLDeriver) Option {
	return func(s *service) {
		s.deriver = deriver
	}
}

// WithLogger sets the structured logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("metadata store is required")
	}
	if s.backend == nil {
		return nil, fmt.Errorf("storage backend is required")
	}

	return s, nil
}

func (s *service) UploadMedia(ctx context.Context, req UploadRequest) (*MediaAsset, error) {
	if !req.EntityType.Valid() {
		return nil, ErrInvalidEntityType
	}

	if _, err := os.Stat(req.SourcePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, req.SourcePath)
	}

	name := req.OriginalFilename
	if name == "" {
		name = req.SourcePath
	}
	format := FormatFromFilename(name)
	kind := KindForFormat(format)
	if req.KindHint.Valid() {
		kind = req.KindHint
	}

	uid := assetid.NewID()
	publicID := assetid.PublicID(string(req.EntityType), uid)

	stored, err := s.backend.Store(ctx, StoreRequest{
		SourcePath:       req.SourcePath,
		EntityType:       req.EntityType,
		UniqueID:         uid,
		Kind:             kind,
		Format:           format,
		ContentType:      ContentTypeForFormat(format),
		OriginalFilename: req.OriginalFilename,
	})
	if err != nil {
		return nil, &AssetError{PublicID: publicID, Op: "upload", Err: err}
	}

	asset := &MediaAsset{
		PublicID:         stored.PublicID,
		OriginalFilename: req.OriginalFilename,
		URL:              stored.URL,
		SecureURL:        stored.SecureURL,
		ResourceKind:     kind,
		Format:           format,
		Bytes:            stored.Bytes,
		EntityType:       req.EntityType,
		EntityID:         req.EntityID,
	}
	if kind == ResourceKindVideo {
		asset.Width = placeholderVideoWidth
		asset.Height = placeholderVideoHeight
	} else {
		asset.Width = placeholderImageWidth
		asset.Height = placeholderImageHeight
	}

	inserted, err := s.store.Insert(ctx, asset)
	if err != nil {
		// Bytes are stored but the record is not: compensate before surfacing
		// so readers never observe the reverse.
		if delErr := s.backend.Delete(ctx, publicID, kind, format); delErr != nil {
			s.logger.Error("compensating delete failed after metadata persist failure",
				"public_id", publicID, "error", delErr)
		}
		return nil, &AssetError{
			PublicID: publicID,
			Op:       "upload",
			Err:      fmt.Errorf("%w: %v", ErrMetadataPersistFailed, err),
		}
	}

	return inserted, nil
}

func (s *service) DeleteMedia(ctx context.Context, publicID string, kind ResourceKind) (bool, error) {
	asset, err := s.store.GetByPublicID(ctx, publicID)
	if err != nil {
		return false, err
	}

	// The record is authoritative for kind and format: a caller's stale or
	// missing kind must not point the backend at the wrong partition.
	if asset.ResourceKind.Valid() {
		kind = asset.ResourceKind
	}
	if err := s.backend.Delete(ctx, publicID, kind, asset.Format); err != nil {
		return false, &AssetError{PublicID: publicID, Op: "delete", Err: err}
	}

	if err := s.store.Delete(ctx, asset.ID); err != nil {
		// Bytes are gone but the record remains: recoverable by a sweep job,
		// never silently hidden.
		s.logger.Error("metadata delete failed after backend delete",
			"public_id", publicID, "asset_id", asset.ID, "error", err)
		return false, &AssetError{PublicID: publicID, Op: "delete", Err: err}
	}

	return true, nil
}

func (s *service) GetAsset(ctx context.Context, id uuid.UUID) (*MediaAsset, error) {
	return s.store.GetByID(ctx, id)
}

func (s *service) GetAssetByPublicID(ctx context.Context, publicID string) (*MediaAsset, error) {
	return s.store.GetByPublicID(ctx, publicID)
}

func (s *service) ListByEntity(ctx context.Context, entityType EntityType, entityID int64) ([]*MediaAsset, error) {
	if !entityType.Valid() {
		return nil, ErrInvalidEntityType
	}
	return s.store.ListByEntity(ctx, entityType, entityID)
}

func (s *service) AttachEntity(ctx context.Context, id uuid.UUID, entityID int64) error {
	return s.store.AttachEntity(ctx, id, entityID)
}

func (s *service) ThumbnailURL(asset *MediaAsset, spec ThumbnailSpec) string {
	if s.deriver == nil || asset == nil {
		return ""
	}
	return s.deriver.ThumbnailURL(asset.SecureURL, asset.ResourceKind, spec)
}
