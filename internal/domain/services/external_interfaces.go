package services

import (
	"context"
	"io"
	"time"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// External service interfaces that our domain services depend on

// StorageService interface for object storage operations
type StorageService interface {
	Store(ctx context.Context, params StorageParams) (string, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	// GenerateUploadURL returns a pre-signed URL the client PUTs the object to.
	GenerateUploadURL(ctx context.Context, path, contentType string, expiry time.Duration) (string, error)
	GeneratePresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
	ApplyACL(ctx context.Context, path string, acl ACL) error
}

// StorageParams contains parameters for storing files
type StorageParams struct {
	Path        string
	FileReader  io.Reader
	ContentType string
	Size        int64
}

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ACL is the object policy applied after an upload completes.
type ACL struct {
	Visibility Visibility `json:"visibility"`
	OwnerID    uuid.UUID  `json:"owner_id"`
}

// IdentityProvider authenticates users against the external auth service.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*IdentitySession, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*IdentitySession, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Identity is the provider's view of a user.
type Identity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// IdentitySession is an authenticated identity with its refresh credential.
type IdentitySession struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenManager issues and verifies our own access tokens.
type TokenManager interface {
	Issue(user *models.User) (token string, claims *AccessClaims, err error)
	Parse(token string) (*AccessClaims, error)
}

// AccessClaims are the verified contents of an access token.
type AccessClaims struct {
	TokenID   string
	UserID    uuid.UUID
	Role      models.UserRole
	Email     string
	ExpiresAt time.Time
	// Expired is set when the signature is valid but exp has passed.
	Expired bool
}

// PasswordHasher hashes share-link passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) (bool, error)
}

// PermitLookupClient asks the AI collaborator which permits a job needs.
type PermitLookupClient interface {
	Lookup(ctx context.Context, address, scopeOfWork string) []PermitSuggestion
}

// PermitSuggestion is one permit the lookup believes applies.
type PermitSuggestion struct {
	Name           string `json:"name"`
	Authority      string `json:"authority"`
	FormURL        string `json:"form_url"`
	Fee            string `json:"fee"`
	ProcessingTime string `json:"processing_time"`
	Notes          string `json:"notes"`
	Fallback       bool   `json:"fallback,omitempty"`
}
