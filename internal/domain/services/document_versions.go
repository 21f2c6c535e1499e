package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// CreateVersionParams carry the new file. Empty descriptive fields are inherited.
type CreateVersionParams struct {
	DocumentAttributes
	FileAttributes
	VersionNotes string
}

// CreateVersion appends a version to the chain of documentID, which may be any member of the chain.
// Only the uploader of that member or a manager of its property may add versions.
func (s *DocumentService) CreateVersion(ctx context.Context, actor Actor, documentID uuid.UUID, params CreateVersionParams) (*models.Document, error) {
	source, err := s.loadForManage(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}
	if err := validStoragePath(params.StoragePath); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.OriginalFilename) == "" {
		return nil, validationError("original_filename is required")
	}
	if params.MimeType != "" && !s.isAllowedMimeType(params.MimeType) {
		return nil, validationError("unsupported content type %q", params.MimeType)
	}
	if s.config.MaxFileSize > 0 && params.FileSize > s.config.MaxFileSize {
		return nil, validationError("file exceeds maximum size of %d bytes", s.config.MaxFileSize)
	}

	doc := inheritVersion(source, params)
	doc.UploadedBy = actor.UserID

	rootID := source.ChainRootID()
	if err := s.docRepo.AppendVersion(ctx, rootID, doc); err != nil {
		return nil, translate(err, "create document version")
	}

	s.applyACL(ctx, doc)
	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditCreate,
		EntityType:  documentEntity,
		EntityID:    doc.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Uploaded version %d of %q", doc.Version, doc.Name),
		After:       doc,
	})
	return doc, nil
}

// inheritVersion copies the source's descriptive fields, letting non-empty params override them.
func inheritVersion(source *models.Document, params CreateVersionParams) *models.Document {
	doc := &models.Document{
		Name:             source.Name,
		Description:      source.Description,
		Type:             source.Type,
		Category:         source.Category,
		Tags:             append(models.StringList(nil), source.Tags...),
		PropertyID:       source.PropertyID,
		MilestoneID:      source.MilestoneID,
		AccessLevel:      source.AccessLevel,
		AllowedUsers:     append(models.StringList(nil), source.AllowedUsers...),
		AllowedRoles:     append(models.StringList(nil), source.AllowedRoles...),
		ExpiresAt:        source.ExpiresAt,
		StoragePath:      params.StoragePath,
		OriginalFilename: params.OriginalFilename,
		FileSize:         params.FileSize,
		MimeType:         params.MimeType,
		Checksum:         params.Checksum,
		VersionNotes:     params.VersionNotes,
		Status:           models.DocStatusDraft,
	}

	attrs := params.DocumentAttributes
	if strings.TrimSpace(attrs.Name) != "" {
		doc.Name = attrs.Name
	}
	if attrs.Description != "" {
		doc.Description = attrs.Description
	}
	if attrs.Type != "" {
		doc.Type = attrs.Type
	}
	if attrs.Category != "" {
		doc.Category = attrs.Category
	}
	if len(attrs.Tags) > 0 {
		doc.Tags = models.StringList(attrs.Tags)
	}
	if attrs.MilestoneID != nil {
		doc.MilestoneID = attrs.MilestoneID
	}
	if attrs.AccessLevel != "" {
		doc.AccessLevel = attrs.AccessLevel
	}
	if len(attrs.AllowedUsers) > 0 {
		doc.AllowedUsers = models.StringList(attrs.AllowedUsers)
	}
	if len(attrs.AllowedRoles) > 0 {
		doc.AllowedRoles = models.StringList(attrs.AllowedRoles)
	}
	if attrs.ExpiresAt != nil {
		doc.ExpiresAt = attrs.ExpiresAt
	}
	return doc
}

// resolveChainRoot maps any member id to its chain root. A deleted root is still a valid chain id.
func (s *DocumentService) resolveChainRoot(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return id, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc.ChainRootID(), nil
}

// GetLatestVersion returns the single latest row of the chain containing id.
func (s *DocumentService) GetLatestVersion(ctx context.Context, actor Actor, id uuid.UUID) (*models.Document, error) {
	rootID, err := s.resolveChainRoot(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.docRepo.GetLatestInChain(ctx, rootID)
	if err != nil {
		return nil, translate(err, "get latest version")
	}
	allowed, err := s.access.CanRead(ctx, actor, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate access: %w", err)
	}
	if !allowed {
		return nil, ErrForbidden
	}
	return doc, nil
}

// GetVersionHistory returns every version of the chain containing id, root included, newest first.
func (s *DocumentService) GetVersionHistory(ctx context.Context, actor Actor, id uuid.UUID) ([]models.Document, error) {
	latest, err := s.GetLatestVersion(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	chain, err := s.docRepo.ListChain(ctx, latest.ChainRootID())
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return chain, nil
}
