package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawmarket/media-store/pkg/mediastore"
	"github.com/pawmarket/media-store/pkg/mediastore/api"
	repopg "github.com/pawmarket/media-store/pkg/mediastore/repo/postgres"
	s3storage "github.com/pawmarket/media-store/pkg/mediastore/storage/s3"
	"github.com/pawmarket/media-store/pkg/mediastore/urlderive"
)

// Fixed production wiring: postgres metadata store plus the remote object
// backend. For backend selection via MEDIA_STORAGE_URL use cmd/server instead.
type Config struct {
	Port string `env:"PORT" env-default:"8080"`
	DB   DbConfig
	S3   S3Config

	PublicBaseURL     string `env:"MEDIA_PUBLIC_BASE_URL" env-required:"true"`
	ThumbnailFallback string `env:"MEDIA_THUMBNAIL_FALLBACK" env-default:""`
}

type DbConfig struct {
	Port     uint16 `env:"MEDIA_PG_PORT" env-default:"5432"`
	Host     string `env:"MEDIA_PG_HOST" env-default:"localhost"`
	Name     string `env:"MEDIA_PG_NAME" env-default:"pawmarket_db"`
	User     string `env:"MEDIA_PG_USER" env-default:"media"`
	Password string `env:"MEDIA_PG_PASSWORD" env-default:"pwd"`
}

type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	BucketName      string `env:"AWS_S3_BUCKET" env-default:"media-bucket"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

func newDbPool(ctx context.Context, dbConfig DbConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbConfig.toDatabaseUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func main() {
	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := newDbPool(ctx, config.DB)
	if err != nil {
		slog.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	backend, err := s3storage.New(s3storage.Config{
		Region:                 config.S3.Region,
		Bucket:                 config.S3.BucketName,
		AccessKeyID:            config.S3.AccessKeyID,
		SecretAccessKey:        config.S3.SecretAccessKey,
		Endpoint:               config.S3.Endpoint,
		UsePathStyle:           config.S3.Endpoint != "",
		PublicBaseURL:          config.PublicBaseURL,
		CreateBucketIfNotExist: config.S3.CreateBucket,
	})
	if err != nil {
		slog.Error("Failed to initialize storage backend", "err", err)
		os.Exit(1)
	}

	svc, err := mediastore.New(
		mediastore.WithMetadataStore(repopg.NewWithPool(dbPool)),
		mediastore.WithBackend(backend),
		mediastore.WithURLDeriver(urlderive.NewTransformDeriver(config.ThumbnailFallback)),
	)
	if err != nil {
		slog.Error("Failed to build media service", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/media", api.NewMediaHandler(svc).Routes())
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Port),
		Handler: r,
	}

	go func() {
		slog.Info("Media store server starting", "port", config.Port, "bucket", config.S3.BucketName)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}
}
