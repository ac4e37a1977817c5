// Package storage holds uploaded material files in object storage. The
// database keeps the extracted text and a pointer to the original file here.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// BlobStore is the object storage surface the material upload path uses.
type BlobStore interface {
	// Upload stores an object and returns its storage path.
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	// Download retrieves an object's bytes.
	Download(ctx context.Context, objectName string) ([]byte, error)
	// PresignedURL returns a time-limited download URL for an object.
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	// Delete removes an object.
	Delete(ctx context.Context, objectName string) error
}

// MinIOConfig configures the MinIO client.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
}

// MinIO implements BlobStore over a MinIO (or S3-compatible) server.
type MinIO struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

var _ BlobStore = (*MinIO)(nil)

// NewMinIO creates a MinIO-backed store and ensures the bucket exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig, logger zerolog.Logger) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info().Str("bucket", cfg.Bucket).Msg("created storage bucket")
	}

	return &MinIO{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Upload implements BlobStore.
func (m *MinIO) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	info, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	m.logger.Debug().
		Str("object", objectName).
		Int64("size", info.Size).
		Msg("uploaded object")
	return fmt.Sprintf("%s/%s", m.bucket, objectName), nil
}

// Download implements BlobStore.
func (m *MinIO) Download(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", objectName, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", objectName, err)
	}
	return data, nil
}

// PresignedURL implements BlobStore.
func (m *MinIO) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectName, err)
	}
	return u.String(), nil
}

// Delete implements BlobStore.
func (m *MinIO) Delete(ctx context.Context, objectName string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", objectName, err)
	}
	return nil
}
