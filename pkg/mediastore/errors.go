package mediastore

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrSourceNotFound indicates the upload source file is missing or unreadable
	ErrSourceNotFound = errors.New("source file not found")

	// ErrWriteFailed indicates a byte write to a storage backend failed
	ErrWriteFailed = errors.New("write failed")

	// ErrPartitionProvisionFailed indicates a directory or bucket partition could not be created
	ErrPartitionProvisionFailed = errors.New("partition provisioning failed")

	// ErrMetadataPersistFailed indicates the metadata record could not be persisted after a successful byte write
	ErrMetadataPersistFailed = errors.New("metadata persist failed")

	// ErrAssetNotFound indicates a delete or query of an unknown asset
	ErrAssetNotFound = errors.New("asset not found")

	// ErrUnsupportedFormat indicates a file extension outside the known lookup
	// table. Uploads never fail with it (unknown extensions fall back to a
	// generic content type); it exists for callers that pre-validate with
	// KnownFormat before spooling an upload.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidEntityType indicates an entity type outside the closed set
	ErrInvalidEntityType = errors.New("invalid entity type")
)

// AssetError represents an error related to asset operations
type AssetError struct {
	PublicID string
	Op       string
	Err      error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset operation %s failed for %s: %v", e.Op, e.PublicID, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage backend operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
