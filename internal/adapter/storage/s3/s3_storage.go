package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

// Storage is the MinIO-backed image store, used when STORAGE_BACKEND=s3.
type Storage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func NewStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool, logger *zap.Logger) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	err = client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, existsErr := client.BucketExists(context.Background(), bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", bucket, err)
		}
	}

	logger.Info("s3 storage initialized", zap.String("endpoint", endpoint), zap.String("bucket", bucket))
	return &Storage{client: client, bucket: bucket, logger: logger}, nil
}

func (s *Storage) Save(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, filename, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("put object failed", zap.String("key", filename), zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, filename), nil
}

func (s *Storage) Delete(ctx context.Context, filename string) error {
	// RemoveObject is a no-op for missing keys, so existence is checked
	// first to keep the NotFound contract.
	_, err := s.client.StatObject(ctx, s.bucket, filename, minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return domain.ErrImageNotFound
		}
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}
