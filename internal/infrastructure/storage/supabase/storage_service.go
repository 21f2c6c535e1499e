package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	supabase "github.com/nedpals/supabase-go"
)

const aclSuffix = ".acl.json"

type StorageService struct {
	client     *supabase.Client
	bucketName string
}

var _ services.StorageService = (*StorageService)(nil)

type Config struct {
	URL    string
	APIKey string
	Bucket string
}

func NewStorageService(config Config) (*StorageService, error) {
	client := supabase.CreateClient(config.URL, config.APIKey)
	if client == nil {
		return nil, fmt.Errorf("failed to create Supabase client")
	}

	return &StorageService{
		client:     client,
		bucketName: config.Bucket,
	}, nil
}

func (s *StorageService) Store(ctx context.Context, params services.StorageParams) (string, error) {
	content, err := io.ReadAll(params.FileReader)
	if err != nil {
		return "", fmt.Errorf("failed to read file content: %w", err)
	}

	if err := s.upload(params.Path, content, params.ContentType, false); err != nil {
		return "", err
	}
	return params.Path, nil
}

func (s *StorageService) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	content, err := s.client.Storage.From(s.bucketName).Download(path)
	if err != nil {
		return nil, fmt.Errorf("failed to download file from Supabase: %w", err)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Delete removes the object together with its ACL sidecar.
func (s *StorageService) Delete(ctx context.Context, path string) error {
	response := s.client.Storage.From(s.bucketName).Remove([]string{path, path + aclSuffix})
	if response.Key == "" && response.Message != "" {
		return fmt.Errorf("failed to delete file from Supabase: %s", response.Message)
	}
	return nil
}

// GenerateUploadURL is not offered by the storage client; callers upload through the API.
func (s *StorageService) GenerateUploadURL(ctx context.Context, path, contentType string, expiry time.Duration) (string, error) {
	return "", fmt.Errorf("%w: supabase storage does not issue upload URLs", services.ErrUpstream)
}

func (s *StorageService) GeneratePresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	signedURL := s.client.Storage.From(s.bucketName).CreateSignedUrl(path, int(expiry.Seconds()))
	if signedURL.SignedUrl == "" {
		return "", fmt.Errorf("failed to generate presigned URL")
	}
	return signedURL.SignedUrl, nil
}

// ApplyACL writes the policy as a JSON object next to the file.
func (s *StorageService) ApplyACL(ctx context.Context, path string, acl services.ACL) error {
	data, err := json.Marshal(acl)
	if err != nil {
		return fmt.Errorf("failed to encode acl: %w", err)
	}
	return s.upload(path+aclSuffix, data, "application/json", true)
}

func (s *StorageService) upload(path string, content []byte, contentType string, upsert bool) error {
	response := s.client.Storage.From(s.bucketName).Upload(path, bytes.NewReader(content), &supabase.FileUploadOptions{
		ContentType: contentType,
		Upsert:      upsert,
	})
	if response.Key == "" {
		return fmt.Errorf("failed to upload file to Supabase: %s", response.Message)
	}
	return nil
}
