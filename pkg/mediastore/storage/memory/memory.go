package memory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pawmarket/media-store/pkg/mediastore"
	"github.com/pawmarket/media-store/pkg/mediastore/assetid"
)

// Backend is an in-memory implementation of the mediastore.Backend interface,
// used for tests and development.
type Backend struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
	baseURL      string
}

// New creates a new in-memory storage backend. The base URL defaults to a
// marker-carrying form so thumbnail derivation behaves like the remote
// backend in tests.
func New(baseURL string) *Backend {
	if baseURL == "" {
		baseURL = "https://media.test/upload"
	}
	return &Backend{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
		baseURL:      strings.TrimSuffix(baseURL, "/"),
	}
}

// Store reads the source file into memory under the partition key.
func (b *Backend) Store(ctx context.Context, req mediastore.StoreRequest) (*mediastore.StoredObject, error) {
	data, err := os.ReadFile(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", mediastore.ErrSourceNotFound, req.SourcePath)
	}

	key := assetid.ObjectKey(req.Kind.Dir(), string(req.EntityType), req.UniqueID, req.Format)

	b.mu.Lock()
	b.objects[key] = data
	b.contentTypes[key] = req.ContentType
	b.mu.Unlock()

	url := b.baseURL + "/" + key
	return &mediastore.StoredObject{
		PublicID:  assetid.PublicID(string(req.EntityType), req.UniqueID),
		Key:       key,
		URL:       url,
		SecureURL: url,
		Bytes:     int64(len(data)),
		Kind:      req.Kind,
		Format:    req.Format,
	}, nil
}

// Delete removes the object, scanning for the unique-id prefix when the
// format is unknown.
func (b *Backend) Delete(ctx context.Context, publicID string, kind mediastore.ResourceKind, format string) error {
	entityType, uid := assetid.SplitPublicID(publicID)

	b.mu.Lock()
	defer b.mu.Unlock()

	if format != "" {
		key := assetid.ObjectKey(kind.Dir(), entityType, uid, format)
		if _, ok := b.objects[key]; ok {
			delete(b.objects, key)
			delete(b.contentTypes, key)
			return nil
		}
	}

	prefix := kind.Dir() + "/" + entityType + "/" + uid + "."
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) {
			delete(b.objects, key)
			delete(b.contentTypes, key)
			return nil
		}
	}
	return mediastore.ErrAssetNotFound
}

// ResolveURL composes the in-memory delivery URL.
func (b *Backend) ResolveURL(publicID string, opts mediastore.ResolveOptions) string {
	entityType, uid := assetid.SplitPublicID(publicID)
	return b.baseURL + "/" + assetid.ObjectKey(opts.Kind.Dir(), entityType, uid, opts.Format)
}

// Object returns the stored bytes for a key, for test assertions.
func (b *Backend) Object(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	return data, ok
}

// Len reports the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
