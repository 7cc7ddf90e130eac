package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawmarket/media-store/pkg/mediastore"
	repomemory "github.com/pawmarket/media-store/pkg/mediastore/repo/memory"
	repopg "github.com/pawmarket/media-store/pkg/mediastore/repo/postgres"
	fsstorage "github.com/pawmarket/media-store/pkg/mediastore/storage/fs"
	memorystorage "github.com/pawmarket/media-store/pkg/mediastore/storage/memory"
	s3storage "github.com/pawmarket/media-store/pkg/mediastore/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		StorageType:  "memory",
	}
}

// ServerConfig represents server configuration for the media store service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Storage backend selection
	StorageType string // "memory", "local", "s3"

	// Local backend
	LocalRoot  string // durable storage root
	PublicRoot string // web server public static root (symlink target)
	URLPrefix  string // prefix for relative delivery URLs

	// Remote backend
	S3 S3Config

	// ThumbnailFallbackURL is the placeholder returned when a thumbnail
	// cannot be derived (empty selects the library default)
	ThumbnailFallbackURL string
}

// S3Config represents configuration for the remote object backend
type S3Config struct {
	Region                 string
	Bucket                 string
	AccessKeyID            string
	SecretAccessKey        string
	Endpoint               string
	UsePathStyle           bool
	PublicBaseURL          string
	CreateBucketIfNotExist bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.StorageType {
	case "memory":
	case "local":
		if c.LocalRoot == "" {
			return errors.New("local storage root is required for local storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("bucket is required for s3 storage")
		}
		if c.S3.PublicBaseURL == "" {
			return errors.New("public base URL is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// The backend is selected here, at process startup, never at request time.
func (c *ServerConfig) BuildService() (mediastore.Service, error) {
	store, err := c.buildMetadataStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata store: %w", err)
	}

	backend, deriver, err := c.buildStorageBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	return mediastore.New(
		mediastore.WithMetadataStore(store),
		mediastore.WithBackend(backend),
		mediastore.WithURLDeriver(deriver),
	)
}

func (c *ServerConfig) buildMetadataStore() (mediastore.MetadataStore, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) buildStorageBackend() (mediastore.Backend, mediastore.URLDeriver, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(""), urlderiveFor(true, c.ThumbnailFallbackURL), nil
	case "local":
		backend, err := fsstorage.New(fsstorage.Config{
			Root:       c.LocalRoot,
			PublicRoot: c.PublicRoot,
			URLPrefix:  c.URLPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		// Local storage has no transform endpoint; thumbnails fall back.
		return backend, urlderiveFor(false, c.ThumbnailFallbackURL), nil
	case "s3":
		backend, err := s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PublicBaseURL:          c.S3.PublicBaseURL,
			CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
		})
		if err != nil {
			return nil, nil, err
		}
		return backend, urlderiveFor(true, c.ThumbnailFallbackURL), nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}
