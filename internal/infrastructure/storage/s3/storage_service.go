package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/tags"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// StorageService talks to any S3-compatible endpoint through minio-go.
type StorageService struct {
	cl     *minio.Client
	bucket string
}

var _ services.StorageService = (*StorageService)(nil)

func NewStorageService(cfg Config) (*StorageService, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	return &StorageService{cl: cl, bucket: cfg.Bucket}, nil
}

func (s *StorageService) Store(ctx context.Context, params services.StorageParams) (string, error) {
	size := params.Size
	if size <= 0 {
		size = -1
	}
	_, err := s.cl.PutObject(ctx, s.bucket, params.Path, params.FileReader, size, minio.PutObjectOptions{
		ContentType: params.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	return params.Path, nil
}

func (s *StorageService) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.cl.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key here instead of on first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	return obj, nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	if err := s.cl.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (s *StorageService) GenerateUploadURL(ctx context.Context, path, contentType string, expiry time.Duration) (string, error) {
	u, err := s.cl.PresignedPutObject(ctx, s.bucket, path, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return u.String(), nil
}

func (s *StorageService) GeneratePresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	u, err := s.cl.PresignedGetObject(ctx, s.bucket, path, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return u.String(), nil
}

// ApplyACL records the policy as object tags.
func (s *StorageService) ApplyACL(ctx context.Context, path string, acl services.ACL) error {
	t, err := tags.NewTags(aclTags(acl), true)
	if err != nil {
		return fmt.Errorf("failed to build tags: %w", err)
	}
	if err := s.cl.PutObjectTagging(ctx, s.bucket, path, t, minio.PutObjectTaggingOptions{}); err != nil {
		return fmt.Errorf("failed to tag object: %w", err)
	}
	return nil
}

func aclTags(acl services.ACL) map[string]string {
	return map[string]string{
		"visibility": string(acl.Visibility),
		"owner":      acl.OwnerID.String(),
	}
}
