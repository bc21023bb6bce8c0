// Package storage keeps project brochures in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appinventory "github.com/ryznreal/offers/internal/application/inventory"
	"github.com/ryznreal/offers/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ appinventory.BrochureStorage = (*S3BrochureStorage)(nil)

// S3API is the subset of *s3.Client used for brochures
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3BrochureStorage stores brochures in any S3-compatible bucket
// (AWS S3, MinIO, RustFS). Objects live under the configured key prefix.
type S3BrochureStorage struct {
	client    S3API
	bucket    string
	keyPrefix string
	baseURL   *url.URL
	logger    *zap.Logger
}

// S3Option is a functional option for configuring S3BrochureStorage
type S3Option func(*S3BrochureStorage)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3BrochureStorage) {
		s.logger = logger
	}
}

// WithClient replaces the S3 client
func WithClient(client S3API) S3Option {
	return func(s *S3BrochureStorage) {
		s.client = client
	}
}

// NewS3BrochureStorage creates the storage from configuration
func NewS3BrochureStorage(ctx context.Context, cfg *config.StorageConfig, opts ...S3Option) (*S3BrochureStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage access key and secret key are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	endpointURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	base, err := publicBase(cfg, endpointURL)
	if err != nil {
		return nil, err
	}

	s := &S3BrochureStorage{
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		baseURL:   base,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil {
		return s, nil
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}
	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpointURL.String())
	})
	return s, nil
}

// publicBase returns the URL objects are served from: the configured
// public base, or the bucket on the endpoint
func publicBase(cfg *config.StorageConfig, endpoint *url.URL) (*url.URL, error) {
	if cfg.PublicBaseURL != "" {
		u, err := url.Parse(strings.TrimRight(cfg.PublicBaseURL, "/"))
		if err != nil {
			return nil, fmt.Errorf("invalid storage public base URL: %w", err)
		}
		return u, nil
	}
	u := *endpoint
	if cfg.UsePathStyle {
		u.Path = path.Join("/", u.Path, cfg.Bucket)
	} else {
		u.Host = cfg.Bucket + "." + u.Host
	}
	return &u, nil
}

// ObjectKey returns the bucket key for a storage key
func (s *S3BrochureStorage) ObjectKey(storageKey string) string {
	if s.keyPrefix == "" {
		return storageKey
	}
	return s.keyPrefix + "/" + storageKey
}

// ObjectURL returns the URL buyers use to open a stored object
func (s *S3BrochureStorage) ObjectURL(storageKey string) string {
	return s.baseURL.JoinPath(s.ObjectKey(storageKey)).String()
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3BrochureStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload stores body and returns the object's public URL
func (s *S3BrochureStorage) Upload(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}

	key := s.ObjectKey(storageKey)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.logger.Debug("Brochure uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int64("size", size),
	)
	return s.ObjectURL(storageKey), nil
}

// Delete removes an object. S3 treats deleting a missing key as success.
func (s *S3BrochureStorage) Delete(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	key := s.ObjectKey(storageKey)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Bucket returns the bucket name
func (s *S3BrochureStorage) Bucket() string {
	return s.bucket
}
