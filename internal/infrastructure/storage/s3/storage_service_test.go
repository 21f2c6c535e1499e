package s3

import (
	"testing"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7/pkg/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestACLTags(t *testing.T) {
	owner := uuid.New()
	m := aclTags(services.ACL{Visibility: services.VisibilityPublic, OwnerID: owner})

	assert.Equal(t, "public", m["visibility"])
	assert.Equal(t, owner.String(), m["owner"])

	_, err := tags.NewTags(m, true)
	require.NoError(t, err)
}

func TestNewStorageService(t *testing.T) {
	s, err := NewStorageService(Config{Endpoint: "localhost:9000", Bucket: "docs", AccessKey: "a", SecretKey: "b", PathStyle: true})
	require.NoError(t, err)
	assert.Equal(t, "docs", s.bucket)
}
