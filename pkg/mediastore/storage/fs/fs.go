package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pawmarket/media-store/pkg/mediastore"
	"github.com/pawmarket/media-store/pkg/mediastore/assetid"
)

// Backend is a local-disk implementation of the mediastore.Backend interface.
//
// Physical layout: {root}/{kindDir}/{entityType}/{uniqueId}.{format}. The
// root tree is exposed under the web server's public static root via per-kind
// symlinks, with a copy fallback for filesystems that do not support
// symlinking.
type Backend struct {
	root       string
	publicRoot string
	urlPrefix  string
	copyMode   bool
	provision  ProvisionResult
	logger     *slog.Logger
}

// Config options for the filesystem backend
type Config struct {
	// Root is the durable storage directory.
	Root string
	// PublicRoot, when set, is the web server's public static root the kind
	// directories are exposed under.
	PublicRoot string
	// URLPrefix is prepended to relative delivery URLs (usually empty).
	URLPrefix string
	Logger    *slog.Logger
}

// ProvisionResult records how public exposure was provisioned at
// construction, so callers can assert on it instead of scraping logs.
type ProvisionResult struct {
	// Linked lists kind directories exposed via symlink.
	Linked []string
	// Copied lists kind directories exposed by the copy fallback.
	Copied []string
	// CopyErrors holds copy-fallback failures. These are soft: the asset is
	// still durably stored even if web exposure is delayed.
	CopyErrors []error
}

// New creates a filesystem storage backend and idempotently provisions the
// root tree and its public exposure.
func New(config Config) (*Backend, error) {
	if config.Root == "" {
		return nil, errors.New("storage root is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Backend{
		root:       config.Root,
		publicRoot: config.PublicRoot,
		urlPrefix:  strings.TrimSuffix(config.URLPrefix, "/"),
		logger:     logger,
	}

	for _, kind := range []mediastore.ResourceKind{mediastore.ResourceKindImage, mediastore.ResourceKindVideo} {
		dir := filepath.Join(config.Root, kind.Dir())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", mediastore.ErrPartitionProvisionFailed, err)
		}
	}

	if config.PublicRoot != "" {
		if err := b.provisionPublicDirs(); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Provision returns the public-exposure provisioning outcome.
func (b *Backend) Provision() ProvisionResult {
	return b.provision
}

// provisionPublicDirs links each kind directory into the public root,
// falling back to copying existing files when symlinks are unsupported.
// Copy failures are recorded and logged, never swallowed.
func (b *Backend) provisionPublicDirs() error {
	if err := os.MkdirAll(b.publicRoot, 0755); err != nil {
		return fmt.Errorf("%w: %v", mediastore.ErrPartitionProvisionFailed, err)
	}

	for _, kind := range []mediastore.ResourceKind{mediastore.ResourceKindImage, mediastore.ResourceKindVideo} {
		source := filepath.Join(b.root, kind.Dir())
		target := filepath.Join(b.publicRoot, kind.Dir())

		err := os.Symlink(source, target)
		if errors.Is(err, os.ErrExist) && isSymlink(target) {
			// Reprovisioning over an earlier run's link.
			err = nil
		}
		if err == nil {
			b.provision.Linked = append(b.provision.Linked, kind.Dir())
			continue
		}

		// Symlinks unsupported on this filesystem: copy what already exists
		// and switch to copy mode for subsequent stores.
		b.copyMode = true
		if copyErr := copyTree(source, target); copyErr != nil {
			b.logger.Error("public directory copy fallback failed",
				"kind", kind.Dir(), "error", copyErr)
			b.provision.CopyErrors = append(b.provision.CopyErrors, copyErr)
			continue
		}
		b.provision.Copied = append(b.provision.Copied, kind.Dir())
	}

	return nil
}

// Store writes the source file under its partition and returns the stored
// object with resolved relative URLs.
func (b *Backend) Store(ctx context.Context, req mediastore.StoreRequest) (*mediastore.StoredObject, error) {
	if _, err := os.Stat(req.SourcePath); err != nil {
		return nil, fmt.Errorf("%w: %s", mediastore.ErrSourceNotFound, req.SourcePath)
	}

	key := assetid.ObjectKey(req.Kind.Dir(), string(req.EntityType), req.UniqueID, req.Format)
	destPath := filepath.Join(b.root, filepath.FromSlash(key))

	// Concurrent first-use of a new entityType partition must not error:
	// MkdirAll treats already-exists as success.
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, &mediastore.StorageError{
			Backend: "fs", Key: key, Op: "provision",
			Err: fmt.Errorf("%w: %v", mediastore.ErrPartitionProvisionFailed, err),
		}
	}

	// Write to a temporary name and rename, so a failed or interrupted write
	// is never retrievable at the final path.
	if err := copyFileAtomic(req.SourcePath, destPath); err != nil {
		return nil, &mediastore.StorageError{
			Backend: "fs", Key: key, Op: "store",
			Err: fmt.Errorf("%w: %v", mediastore.ErrWriteFailed, err),
		}
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return nil, &mediastore.StorageError{
			Backend: "fs", Key: key, Op: "store",
			Err: fmt.Errorf("%w: %v", mediastore.ErrWriteFailed, err),
		}
	}

	if b.copyMode && b.publicRoot != "" {
		publicPath := filepath.Join(b.publicRoot, filepath.FromSlash(key))
		copyErr := os.MkdirAll(filepath.Dir(publicPath), 0755)
		if copyErr == nil {
			copyErr = copyFileAtomic(destPath, publicPath)
		}
		if copyErr != nil {
			// Soft failure: bytes are durable, only web exposure is delayed.
			b.logger.Error("public copy of stored file failed", "key", key, "error", copyErr)
		}
	}

	url := b.urlPrefix + "/" + key
	return &mediastore.StoredObject{
		PublicID:  assetid.PublicID(string(req.EntityType), req.UniqueID),
		Key:       key,
		URL:       url,
		SecureURL: url,
		Bytes:     info.Size(),
		Kind:      req.Kind,
		Format:    req.Format,
	}, nil
}

// Delete removes the stored bytes for a public id. A known format locates the
// file directly; otherwise the partition is scanned for the unique-id prefix.
func (b *Backend) Delete(ctx context.Context, publicID string, kind mediastore.ResourceKind, format string) error {
	entityType, uid := assetid.SplitPublicID(publicID)
	partition := filepath.Join(b.root, kind.Dir(), entityType)

	var path string
	if format != "" {
		path = filepath.Join(partition, uid+"."+strings.ToLower(format))
		if _, err := os.Stat(path); err != nil {
			// Format hint was wrong or absent at delete-time: fall back to
			// scanning the partition.
			path = ""
		}
	}
	if path == "" {
		found, err := scanForUniqueID(partition, uid)
		if err != nil {
			return err
		}
		path = found
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return mediastore.ErrAssetNotFound
		}
		return &mediastore.StorageError{Backend: "fs", Key: publicID, Op: "delete", Err: err}
	}

	if b.copyMode && b.publicRoot != "" {
		rel, err := filepath.Rel(b.root, path)
		if err == nil {
			if err := os.Remove(filepath.Join(b.publicRoot, rel)); err != nil && !os.IsNotExist(err) {
				b.logger.Error("public copy removal failed", "public_id", publicID, "error", err)
			}
		}
	}

	b.cleanupEmptyDirectories(filepath.Dir(path))
	return nil
}

// ResolveURL composes the relative delivery URL for a stored object.
// Transform options are ignored: local storage has no transform endpoint.
func (b *Backend) ResolveURL(publicID string, opts mediastore.ResolveOptions) string {
	entityType, uid := assetid.SplitPublicID(publicID)
	return b.urlPrefix + "/" + assetid.ObjectKey(opts.Kind.Dir(), entityType, uid, opts.Format)
}

// scanForUniqueID locates a file in the partition whose name starts with the
// unique id. Documented fallback for deletes without a known format.
func scanForUniqueID(partition, uid string) (string, error) {
	entries, err := os.ReadDir(partition)
	if err != nil {
		if os.IsNotExist(err) {
			return "", mediastore.ErrAssetNotFound
		}
		return "", &mediastore.StorageError{Backend: "fs", Key: uid, Op: "scan", Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), uid+".") || entry.Name() == uid {
			return filepath.Join(partition, entry.Name()), nil
		}
	}
	return "", mediastore.ErrAssetNotFound
}

// isSymlink reports whether the path exists and is a symbolic link. An
// ordinary directory or file at the path means a previous copy-mode run (or a
// stray entry), not a link into the root.
func isSymlink(path string) bool {
	fi, err := os.Lstat(path)
	return err == nil && fi.Mode()&os.ModeSymlink != 0
}

// copyFileAtomic copies src to dest via a temporary sibling and rename.
func copyFileAtomic(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// copyTree copies all regular files under source into target, preserving the
// relative layout.
func copyTree(source, target string) error {
	return filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(target, rel)
		if info.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		return copyFileAtomic(path, dest)
	})
}

// cleanupEmptyDirectories removes empty entity partitions. The kind
// directories stay: they are the public symlink targets.
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.root || filepath.Dir(dir) == b.root || !strings.HasPrefix(dir, b.root) {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
