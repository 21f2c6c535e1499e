package local

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *StorageService {
	return NewStorageService(t.TempDir(), "http://localhost:8080/api/v1/files/", "signing-key")
}

func TestStorageService_StoreGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	key := "documents/2026/10/plan.pdf"

	stored, err := s.Store(ctx, services.StorageParams{Path: key, FileReader: bytes.NewBufferString("floor plan")})
	require.NoError(t, err)
	assert.Equal(t, key, stored)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "floor plan", string(content))

	owner := uuid.New()
	require.NoError(t, s.ApplyACL(ctx, key, services.ACL{Visibility: services.VisibilityPrivate, OwnerID: owner}))
	acl, err := s.ReadACL(key)
	require.NoError(t, err)
	require.NotNil(t, acl)
	assert.Equal(t, owner, acl.OwnerID)

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(s.basePath, key+aclSuffix))
	assert.True(t, os.IsNotExist(err))
	_, err = s.Get(ctx, key)
	assert.Error(t, err)
}

func TestStorageService_PathTraversal(t *testing.T) {
	s := newTestStorage(t)
	stored, err := s.Store(context.Background(), services.StorageParams{Path: "../../escape.txt", FileReader: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, "../../escape.txt", stored)
	_, err = os.Stat(filepath.Join(s.basePath, "escape.txt"))
	assert.NoError(t, err, "key should be confined to the base path")

	_, err = s.Store(context.Background(), services.StorageParams{Path: "a.pdf" + aclSuffix, FileReader: strings.NewReader("x")})
	assert.Error(t, err)
}

func TestStorageService_SignedURLs(t *testing.T) {
	s := newTestStorage(t)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	key := "documents/2026/10/a.pdf"

	raw, err := s.GenerateUploadURL(context.Background(), key, "application/pdf", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "http://localhost:8080/api/v1/files/"+key+"?"))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	expires, sig := u.Query().Get("expires"), u.Query().Get("signature")

	assert.NoError(t, s.Verify("PUT", key, expires, sig))
	assert.ErrorIs(t, s.Verify("GET", key, expires, sig), ErrInvalidSignature)
	assert.ErrorIs(t, s.Verify("PUT", "documents/other.pdf", expires, sig), ErrInvalidSignature)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.ErrorIs(t, s.Verify("PUT", key, expires, sig), ErrInvalidSignature)
}
