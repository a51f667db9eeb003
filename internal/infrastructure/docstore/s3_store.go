// Package docstore archives generated documents in S3 or on the local filesystem.
package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/florexport/backend/internal/application/delivery"
	"github.com/florexport/backend/internal/infrastructure/config"
)

// S3Store archives documents in an S3 bucket. Works with AWS S3 and
// S3-compatible stores such as MinIO via a custom endpoint.
type S3Store struct {
	client   *s3.Client
	bucket   string
	basePath string
	logger   *zap.Logger
}

// S3StoreOption configures an S3Store
type S3StoreOption func(*S3Store)

// WithLogger sets the logger for the store
func WithLogger(l *zap.Logger) S3StoreOption {
	return func(s *S3Store) {
		s.logger = l
	}
}

// NewS3Store creates an S3-backed document store. Credentials come from the
// default AWS chain (env vars, shared config, instance role).
func NewS3Store(ctx context.Context, cfg *config.DocStoreConfig, opts ...S3StoreOption) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("docstore bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	store := &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		basePath: strings.Trim(cfg.BasePath, "/"),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// EnsureBucket creates the bucket if it does not exist
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		var alreadyExists *types.BucketAlreadyExists
		if errors.As(err, &alreadyOwned) || errors.As(err, &alreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("created document bucket", zap.String("bucket", s.bucket))
	return nil
}

// Put stores the document under the given key
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", key, err)
	}

	s.logger.Debug("document archived",
		zap.String("key", key),
		zap.Int("size", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Get retrieves a previously archived document
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve document %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", key, err)
	}
	return data, nil
}

func (s *S3Store) objectKey(key string) string {
	if s.basePath == "" {
		return key
	}
	return path.Join(s.basePath, key)
}

var _ delivery.DocumentStore = (*S3Store)(nil)
