package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawmarket/media-store/pkg/mediastore"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements mediastore.MetadataStore using PostgreSQL
type Store struct {
	db DBTX
}

// New creates a new PostgreSQL metadata store
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewWithPool creates a new PostgreSQL metadata store with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

func (s *Store) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "public_id") {
				return fmt.Errorf("public id already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return mediastore.ErrAssetNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const assetColumns = `id, public_id, original_filename, url, secure_url, resource_kind,
		format, width, height, bytes, duration, entity_type, entity_id, created_at`

func (s *Store) Insert(ctx context.Context, asset *mediastore.MediaAsset) (*mediastore.MediaAsset, error) {
	assetCopy := *asset
	assetCopy.ID = uuid.New()
	if assetCopy.CreatedAt.IsZero() {
		assetCopy.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO media_asset (
			id, public_id, original_filename, url, secure_url, resource_kind,
			format, width, height, bytes, duration, entity_type, entity_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := s.db.Exec(ctx, query,
		assetCopy.ID, assetCopy.PublicID, assetCopy.OriginalFilename,
		assetCopy.URL, assetCopy.SecureURL, string(assetCopy.ResourceKind),
		assetCopy.Format, assetCopy.Width, assetCopy.Height, assetCopy.Bytes,
		assetCopy.Duration, string(assetCopy.EntityType), assetCopy.EntityID,
		assetCopy.CreatedAt)
	if err != nil {
		return nil, s.handlePostgresError("insert asset", err)
	}

	return &assetCopy, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*mediastore.MediaAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM media_asset WHERE id = $1`
	return s.scanAsset(s.db.QueryRow(ctx, query, id))
}

func (s *Store) GetByPublicID(ctx context.Context, publicID string) (*mediastore.MediaAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM media_asset WHERE public_id = $1`
	return s.scanAsset(s.db.QueryRow(ctx, query, publicID))
}

func (s *Store) ListByEntity(ctx context.Context, entityType mediastore.EntityType, entityID int64) ([]*mediastore.MediaAsset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM media_asset
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, string(entityType), entityID)
	if err != nil {
		return nil, s.handlePostgresError("list assets", err)
	}
	defer rows.Close()

	var assets []*mediastore.MediaAsset
	for rows.Next() {
		asset, err := s.scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list assets", err)
	}

	return assets, nil
}

func (s *Store) AttachEntity(ctx context.Context, id uuid.UUID, entityID int64) error {
	query := `UPDATE media_asset SET entity_id = $2 WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, entityID)
	if err != nil {
		return s.handlePostgresError("attach entity", err)
	}
	if tag.RowsAffected() == 0 {
		return mediastore.ErrAssetNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM media_asset WHERE id = $1`, id)
	if err != nil {
		return s.handlePostgresError("delete asset", err)
	}
	if tag.RowsAffected() == 0 {
		return mediastore.ErrAssetNotFound
	}
	return nil
}

func (s *Store) scanAsset(row pgx.Row) (*mediastore.MediaAsset, error) {
	var asset mediastore.MediaAsset
	var kind, entityType string

	err := row.Scan(
		&asset.ID, &asset.PublicID, &asset.OriginalFilename,
		&asset.URL, &asset.SecureURL, &kind,
		&asset.Format, &asset.Width, &asset.Height, &asset.Bytes,
		&asset.Duration, &entityType, &asset.EntityID, &asset.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mediastore.ErrAssetNotFound
		}
		return nil, s.handlePostgresError("scan asset", err)
	}

	asset.ResourceKind = mediastore.ResourceKind(kind)
	asset.EntityType = mediastore.EntityType(entityType)
	return &asset, nil
}
