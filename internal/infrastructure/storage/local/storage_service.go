package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
)

// ErrInvalidSignature is returned when a signed file URL fails verification.
var ErrInvalidSignature = errors.New("invalid or expired file signature")

const aclSuffix = ".acl.json"

// StorageService keeps objects on local disk and hands out HMAC-signed URLs
// served by the API's file routes.
type StorageService struct {
	basePath   string
	baseURL    string
	signingKey []byte
	now        func() time.Time
}

var _ services.StorageService = (*StorageService)(nil)

// NewStorageService stores under basePath. baseURL is the externally visible
// prefix of the file routes, e.g. "http://localhost:8080/api/v1/files".
func NewStorageService(basePath, baseURL, signingKey string) *StorageService {
	return &StorageService{
		basePath:   basePath,
		baseURL:    strings.TrimRight(baseURL, "/"),
		signingKey: []byte(signingKey),
		now:        time.Now,
	}
}

func (s *StorageService) Store(ctx context.Context, params services.StorageParams) (string, error) {
	fullPath, err := s.resolve(params.Path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, params.FileReader); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	return params.Path, nil
}

func (s *StorageService) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes the object and its ACL sidecar.
func (s *StorageService) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(fullPath + aclSuffix); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete acl: %w", err)
	}
	return nil
}

func (s *StorageService) GenerateUploadURL(ctx context.Context, path, contentType string, expiry time.Duration) (string, error) {
	return s.signedURL("PUT", path, expiry)
}

func (s *StorageService) GeneratePresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.signedURL("GET", path, expiry)
}

func (s *StorageService) ApplyACL(ctx context.Context, path string, acl services.ACL) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(acl)
	if err != nil {
		return fmt.Errorf("failed to encode acl: %w", err)
	}
	if err := os.WriteFile(fullPath+aclSuffix, data, 0o644); err != nil {
		return fmt.Errorf("failed to write acl: %w", err)
	}
	return nil
}

// ReadACL returns the sidecar policy, or nil when none was applied.
func (s *StorageService) ReadACL(path string) (*services.ACL, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath + aclSuffix)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read acl: %w", err)
	}
	var acl services.ACL
	if err := json.Unmarshal(data, &acl); err != nil {
		return nil, fmt.Errorf("failed to decode acl: %w", err)
	}
	return &acl, nil
}

// Verify checks a signature produced by GenerateUploadURL or GeneratePresignedURL.
func (s *StorageService) Verify(method, path, expires, signature string) error {
	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if s.now().Unix() > unix {
		return ErrInvalidSignature
	}
	expected := s.sign(method, path, unix)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

func (s *StorageService) signedURL(method, path string, expiry time.Duration) (string, error) {
	if _, err := s.resolve(path); err != nil {
		return "", err
	}
	expires := s.now().Add(expiry).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", s.sign(method, path, expires))
	return fmt.Sprintf("%s/%s?%s", s.baseURL, path, q.Encode()), nil
}

func (s *StorageService) sign(method, path string, expires int64) string {
	mac := hmac.New(sha256.New, s.signingKey)
	fmt.Fprintf(mac, "%s\n%s\n%d", method, path, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve maps a storage key onto the base directory, rejecting keys that escape it.
func (s *StorageService) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if path == "" || clean == "/" || strings.HasSuffix(path, aclSuffix) {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return filepath.Join(s.basePath, clean), nil
}
