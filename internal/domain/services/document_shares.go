package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

const shareTokenBytes = 32

// CreateShareParams target either a user or, when SharedWithUserID is nil, a public link.
type CreateShareParams struct {
	SharedWithUserID *uuid.UUID
	ExpiresAt        *time.Time
	CanDownload      bool
	CanComment       bool
	Password         string
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CreateShare grants access to a readable document.
func (s *DocumentService) CreateShare(ctx context.Context, actor Actor, documentID uuid.UUID, params CreateShareParams) (*models.DocumentShare, error) {
	doc, err := s.load(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}

	share := &models.DocumentShare{
		DocumentID:  doc.ID,
		SharedBy:    actor.UserID,
		CanDownload: params.CanDownload,
		CanComment:  params.CanComment,
		IsActive:    true,
	}
	if params.ExpiresAt != nil {
		at := params.ExpiresAt.UTC()
		if !at.After(s.now()) {
			return nil, validationError("expires_at must be in the future")
		}
		share.ExpiresAt = &at
	}

	if params.SharedWithUserID != nil {
		if params.Password != "" {
			return nil, validationError("passwords apply to link shares only")
		}
		if _, err := s.userRepo.GetByID(ctx, *params.SharedWithUserID); err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return nil, validationError("user %s does not exist", params.SharedWithUserID)
			}
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		share.SharedWithUserID = params.SharedWithUserID
	} else {
		token, err := newShareToken()
		if err != nil {
			return nil, err
		}
		share.ShareToken = &token
		if params.Password != "" {
			hash, err := s.hasher.Hash(params.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to hash share password: %w", err)
			}
			share.PasswordHash = hash
		}
	}

	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditShare,
		EntityType:  documentEntity,
		EntityID:    doc.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Shared %q", doc.Name),
		After: map[string]interface{}{
			"share_id":            share.ID,
			"shared_with_user_id": share.SharedWithUserID,
			"public_link":         share.ShareToken != nil,
			"expires_at":          share.ExpiresAt,
		},
	})
	return share, nil
}

// ListShares returns every share of a readable document, revoked ones included.
func (s *DocumentService) ListShares(ctx context.Context, actor Actor, documentID uuid.UUID) ([]models.DocumentShare, error) {
	if _, err := s.load(ctx, actor, documentID); err != nil {
		return nil, err
	}
	shares, err := s.shareRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return shares, nil
}

// RevokeShare deactivates a share. Only its creator or a manager of the document may revoke it.
func (s *DocumentService) RevokeShare(ctx context.Context, actor Actor, shareID uuid.UUID) (*models.DocumentShare, error) {
	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		return nil, translate(err, "get share")
	}
	doc, err := s.load(ctx, actor, share.DocumentID)
	if err != nil {
		return nil, err
	}
	if share.SharedBy != actor.UserID {
		ok, err := s.isManager(ctx, actor, doc)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}

	share.IsActive = false
	if err := s.shareRepo.Update(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to revoke share: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  "document_share",
		EntityID:    share.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Revoked a share of %q", doc.Name),
		After:       map[string]interface{}{"is_active": false},
	})
	return share, nil
}

// AccessShare opens a public link: active, then unexpired, then password. Each success is counted.
func (s *DocumentService) AccessShare(ctx context.Context, token, password string) (*models.DocumentShare, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, translate(err, "get share")
	}
	if !share.IsActive {
		return nil, fmt.Errorf("share: %w", ErrNotFound)
	}
	now := s.now()
	if share.ExpiresAt != nil && !now.Before(*share.ExpiresAt) {
		return nil, fmt.Errorf("share expired: %w", ErrNotFound)
	}
	if share.HasPassword() {
		ok, err := s.hasher.Compare(password, share.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("failed to verify share password: %w", err)
		}
		if !ok {
			return nil, ErrForbidden
		}
	}
	if share.Document == nil {
		return nil, fmt.Errorf("shared document: %w", ErrNotFound)
	}

	if err := s.shareRepo.RecordAccess(ctx, share.ID, now.UTC()); err != nil {
		return nil, translate(err, "record share access")
	}
	share.AccessCount++
	accessed := now.UTC()
	share.LastAccessedAt = &accessed
	return share, nil
}

// ShareDownloadURL returns a GET URL for a share that allows downloads.
func (s *DocumentService) ShareDownloadURL(ctx context.Context, share *models.DocumentShare) (string, error) {
	if !share.CanDownload || share.Document == nil {
		return "", nil
	}
	url, err := s.storage.GeneratePresignedURL(ctx, share.Document.StoragePath, s.config.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return url, nil
}
