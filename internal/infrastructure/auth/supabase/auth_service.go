package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	supabase "github.com/nedpals/supabase-go"
)

// AuthService is the Supabase Auth identity provider.
type AuthService struct {
	client *supabase.Client
	now    func() time.Time
}

var _ services.IdentityProvider = (*AuthService)(nil)

type Config struct {
	URL    string
	APIKey string
}

func NewAuthService(config Config) (*AuthService, error) {
	client := supabase.CreateClient(config.URL, config.APIKey)
	if client == nil {
		return nil, fmt.Errorf("failed to create Supabase client")
	}

	return &AuthService{
		client: client,
		now:    time.Now,
	}, nil
}

func (s *AuthService) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*services.Identity, error) {
	user, err := s.client.Auth.SignUp(ctx, supabase.UserCredentials{
		Email:    email,
		Password: password,
		Data:     metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign up user: %v", services.ErrUpstream, err)
	}
	identity := toIdentity(user)
	return &identity, nil
}

// SignIn rejects bad credentials with ErrUnauthorized.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*services.IdentitySession, error) {
	details, err := s.client.Auth.SignIn(ctx, supabase.UserCredentials{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign in user: %v", services.ErrUnauthorized, err)
	}
	return s.toSession(details), nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*services.IdentitySession, error) {
	// The client accepts an empty user token when refreshing.
	details, err := s.client.Auth.RefreshUser(ctx, "", refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to refresh token: %v", services.ErrUnauthorized, err)
	}
	return s.toSession(details), nil
}

func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	if err := s.client.Auth.SignOut(ctx, accessToken); err != nil {
		return fmt.Errorf("failed to sign out user: %w", err)
	}
	return nil
}

func (s *AuthService) toSession(details *supabase.AuthenticatedDetails) *services.IdentitySession {
	return &services.IdentitySession{
		Identity:     toIdentity(&details.User),
		AccessToken:  details.AccessToken,
		RefreshToken: details.RefreshToken,
		ExpiresAt:    s.now().Add(time.Duration(details.ExpiresIn) * time.Second),
	}
}

func toIdentity(user *supabase.User) services.Identity {
	if user == nil {
		return services.Identity{}
	}
	return services.Identity{
		Subject:   user.ID,
		Email:     user.Email,
		FirstName: metadataString(user.UserMetadata, "first_name"),
		LastName:  metadataString(user.UserMetadata, "last_name"),
	}
}

func metadataString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
