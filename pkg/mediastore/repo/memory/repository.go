package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pawmarket/media-store/pkg/mediastore"
)

// Store implements mediastore.MetadataStore using in-memory maps.
type Store struct {
	mu         sync.RWMutex
	assets     map[uuid.UUID]*mediastore.MediaAsset
	byPublicID map[string]uuid.UUID
}

// New creates a new in-memory metadata store
func New() *Store {
	return &Store{
		assets:     make(map[uuid.UUID]*mediastore.MediaAsset),
		byPublicID: make(map[string]uuid.UUID),
	}
}

func (s *Store) Insert(ctx context.Context, asset *mediastore.MediaAsset) (*mediastore.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to avoid external modifications
	assetCopy := *asset
	assetCopy.ID = uuid.New()
	if assetCopy.CreatedAt.IsZero() {
		assetCopy.CreatedAt = time.Now().UTC()
	}

	s.assets[assetCopy.ID] = &assetCopy
	s.byPublicID[assetCopy.PublicID] = assetCopy.ID

	result := assetCopy
	return &result, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*mediastore.MediaAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asset, exists := s.assets[id]
	if !exists {
		return nil, mediastore.ErrAssetNotFound
	}
	assetCopy := *asset
	return &assetCopy, nil
}

func (s *Store) GetByPublicID(ctx context.Context, publicID string) (*mediastore.MediaAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byPublicID[publicID]
	if !exists {
		return nil, mediastore.ErrAssetNotFound
	}
	assetCopy := *s.assets[id]
	return &assetCopy, nil
}

func (s *Store) ListByEntity(ctx context.Context, entityType mediastore.EntityType, entityID int64) ([]*mediastore.MediaAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*mediastore.MediaAsset
	for _, asset := range s.assets {
		if asset.EntityType == entityType && asset.EntityID != nil && *asset.EntityID == entityID {
			assetCopy := *asset
			result = append(result, &assetCopy)
		}
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *Store) AttachEntity(ctx context.Context, id uuid.UUID, entityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, exists := s.assets[id]
	if !exists {
		return mediastore.ErrAssetNotFound
	}
	asset.EntityID = &entityID
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, exists := s.assets[id]
	if !exists {
		return mediastore.ErrAssetNotFound
	}
	delete(s.byPublicID, asset.PublicID)
	delete(s.assets, id)
	return nil
}
