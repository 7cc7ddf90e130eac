package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmarket/media-store/pkg/mediastore"
	"github.com/pawmarket/media-store/pkg/mediastore/repo/memory"
)

func newAsset(publicID string, entityID *int64) *mediastore.MediaAsset {
	return &mediastore.MediaAsset{
		PublicID:     publicID,
		URL:          "/images/pet/" + publicID + ".jpg",
		SecureURL:    "/images/pet/" + publicID + ".jpg",
		ResourceKind: mediastore.ResourceKindImage,
		Format:       "jpg",
		Bytes:        1234,
		EntityType:   mediastore.EntityTypePet,
		EntityID:     entityID,
	}
}

func TestStore_InsertAssignsIDAndCreatedAt(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	inserted, err := store.Insert(ctx, newAsset("pet/a1", nil))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, inserted.ID)
	assert.False(t, inserted.CreatedAt.IsZero())

	got, err := store.GetByID(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, "pet/a1", got.PublicID)

	byPublic, err := store.GetByPublicID(ctx, "pet/a1")
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, byPublic.ID)
}

func TestStore_GetUnknown(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, err := store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, mediastore.ErrAssetNotFound)

	_, err = store.GetByPublicID(ctx, "pet/missing")
	assert.ErrorIs(t, err, mediastore.ErrAssetNotFound)
}

func TestStore_ListByEntity_NewestFirst(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	entityID := int64(42)

	older := newAsset("pet/older", &entityID)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	_, err := store.Insert(ctx, older)
	require.NoError(t, err)

	newer := newAsset("pet/newer", &entityID)
	newer.CreatedAt = time.Now().UTC()
	_, err = store.Insert(ctx, newer)
	require.NoError(t, err)

	otherEntity := int64(7)
	_, err = store.Insert(ctx, newAsset("pet/other", &otherEntity))
	require.NoError(t, err)

	_, err = store.Insert(ctx, newAsset("pet/unassociated", nil))
	require.NoError(t, err)

	assets, err := store.ListByEntity(ctx, mediastore.EntityTypePet, entityID)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "pet/newer", assets[0].PublicID)
	assert.Equal(t, "pet/older", assets[1].PublicID)
}

func TestStore_AttachEntity(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	inserted, err := store.Insert(ctx, newAsset("pet/a2", nil))
	require.NoError(t, err)

	require.NoError(t, store.AttachEntity(ctx, inserted.ID, 42))

	got, err := store.GetByID(ctx, inserted.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EntityID)
	assert.Equal(t, int64(42), *got.EntityID)

	assert.ErrorIs(t, store.AttachEntity(ctx, uuid.New(), 1), mediastore.ErrAssetNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	inserted, err := store.Insert(ctx, newAsset("pet/a3", nil))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, inserted.ID))

	_, err = store.GetByID(ctx, inserted.ID)
	assert.ErrorIs(t, err, mediastore.ErrAssetNotFound)
	_, err = store.GetByPublicID(ctx, "pet/a3")
	assert.ErrorIs(t, err, mediastore.ErrAssetNotFound)

	assert.ErrorIs(t, store.Delete(ctx, inserted.ID), mediastore.ErrAssetNotFound)
}
