package s3

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
)

// S3Storage is the MinIO-backed media store. Object keys double as the
// public ids the rest of the service tracks.
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewS3Storage builds the client and makes sure the bucket exists.
func NewS3Storage(cfg Config, log *logger.Logger) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("created media bucket", zap.String("bucket", cfg.Bucket))
	}

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
		logger: log.Named("s3-storage"),
	}, nil
}

// Upload stores data under a fresh key and returns the ref the client
// will echo back in listing payloads.
func (s *S3Storage) Upload(ctx context.Context, originalFileName string, data []byte) (domain.ImageRef, error) {
	ext := filepath.Ext(originalFileName)
	objectKey := fmt.Sprintf("listings/%s%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		s.logger.Error("upload failed",
			zap.String("bucket", s.bucket), zap.String("key", objectKey), zap.Error(err))
		return domain.ImageRef{}, fmt.Errorf("upload object %s: %w", objectKey, err)
	}

	s.logger.Info("object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", objectKey),
		zap.Int("size_bytes", len(data)))

	return domain.ImageRef{
		URL:      s.PublicURL(objectKey),
		PublicID: objectKey,
	}, nil
}

// Remove deletes one object. MinIO treats removal of a missing key as
// success, which is exactly the idempotence the cleaner relies on.
func (s *S3Storage) Remove(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", publicID, err)
	}
	return nil
}

// PublicURL derives the display URL for a stored object.
func (s *S3Storage) PublicURL(publicID string) string {
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, publicID)
}
