package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/pawmarket/media-store/pkg/mediastore"
	"github.com/pawmarket/media-store/pkg/mediastore/assetid"
)

// Config options for the S3-compatible remote backend
type Config struct {
	Region          string // AWS region
	Bucket          string // bucket name
	AccessKeyID     string // access key (empty: default credential chain)
	SecretAccessKey string // secret key
	Endpoint        string // optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // path-style addressing (MinIO)

	// PublicBaseURL is the delivery base for publicly-readable objects,
	// typically the transform proxy's upload path
	// (e.g. "https://media.example.com/v1/upload"). Object keys are appended
	// directly; no signing step for public-read buckets.
	PublicBaseURL string

	// CreateBucketIfNotExist provisions the bucket idempotently at startup
	CreateBucketIfNotExist bool
}

// Backend is an S3-compatible implementation of the mediastore.Backend
// interface. The same logical partition ({kindDir}/{entityType}/{uniqueId})
// is used as the remote object key prefix.
type Backend struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// New creates a new S3-compatible storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.PublicBaseURL == "" {
		return nil, errors.New("public base URL is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	backend := &Backend{
		client:        s3.NewFromConfig(awsCfg, s3Options...),
		bucket:        config.Bucket,
		publicBaseURL: strings.TrimSuffix(config.PublicBaseURL, "/"),
	}

	if config.CreateBucketIfNotExist {
		if err := backend.createBucketIfNotExists(context.Background(), config.Region); err != nil {
			return nil, fmt.Errorf("%w: %v", mediastore.ErrPartitionProvisionFailed, err)
		}
	}

	return backend, nil
}

// createBucketIfNotExists provisions the bucket, treating already-exists as
// success so concurrent startups never error.
func (b *Backend) createBucketIfNotExists(ctx context.Context, region string) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err == nil {
		return nil
	}

	if !isNotFound(err) && !strings.Contains(err.Error(), "BadRequest") {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(b.bucket),
	}
	if region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	_, err = b.client.CreateBucket(ctx, createInput)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Store uploads the source file as a single logical write with the content
// type negotiated from the extension. The uploader finalizes multipart
// uploads only on confirmed completion, so a timed-out upload never leaves a
// partial object retrievable at the final key.
func (b *Backend) Store(ctx context.Context, req mediastore.StoreRequest) (*mediastore.StoredObject, error) {
	info, err := os.Stat(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", mediastore.ErrSourceNotFound, req.SourcePath)
	}

	file, err := os.Open(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", mediastore.ErrSourceNotFound, req.SourcePath)
	}
	defer file.Close()

	key := assetid.ObjectKey(req.Kind.Dir(), string(req.EntityType), req.UniqueID, req.Format)

	uploader := manager.NewUploader(b.client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(req.ContentType),
	})
	if err != nil {
		return nil, &mediastore.StorageError{
			Backend: "s3", Key: key, Op: "store",
			Err: fmt.Errorf("%w: %v", mediastore.ErrWriteFailed, err),
		}
	}

	url := b.publicBaseURL + "/" + key
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

// Delete removes the remote object. A known format locates the key directly;
// otherwise the partition prefix is listed for the unique-id component.
func (b *Backend) Delete(ctx context.Context, publicID string, kind mediastore.ResourceKind, format string) error {
	entityType, uid := assetid.SplitPublicID(publicID)

	var key string
	if format != "" {
		key = assetid.ObjectKey(kind.Dir(), entityType, uid, format)
		if _, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
		}); err != nil {
			if !isNotFound(err) {
				return &mediastore.StorageError{Backend: "s3", Key: key, Op: "head", Err: err}
			}
			key = ""
		}
	}
	if key == "" {
		found, err := b.scanForUniqueID(ctx, kind.Dir()+"/"+entityType+"/", uid)
		if err != nil {
			return err
		}
		key = found
	}

	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return &mediastore.StorageError{Backend: "s3", Key: key, Op: "delete", Err: err}
	}

	return nil
}

// ResolveURL composes the public delivery URL for a stored object.
// Transform segments are the URL deriver's concern; opts.Transform is
// accepted here so a signed-URL variant can slot in without orchestrator
// changes.
func (b *Backend) ResolveURL(publicID string, opts mediastore.ResolveOptions) string {
	entityType, uid := assetid.SplitPublicID(publicID)
	key := assetid.ObjectKey(opts.Kind.Dir(), entityType, uid, opts.Format)
	if opts.Transform != "" {
		return b.publicBaseURL + "/" + opts.Transform + "/" + key
	}
	return b.publicBaseURL + "/" + key
}

// scanForUniqueID lists the partition prefix for a key carrying the unique
// id. Fallback path for deletes without a known format.
func (b *Backend) scanForUniqueID(ctx context.Context, prefix, uid string) (string, error) {
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix + uid),
	})
	if err != nil {
		return "", &mediastore.StorageError{Backend: "s3", Key: prefix + uid, Op: "scan", Err: err}
	}
	for _, obj := range out.Contents {
		if obj.Key != nil {
			return *obj.Key, nil
		}
	}
	return "", mediastore.ErrAssetNotFound
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}
