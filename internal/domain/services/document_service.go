package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/google/uuid"
)

const documentEntity = "document"

// DocumentServiceConfig holds configuration for the document service
type DocumentServiceConfig struct {
	MaxFileSize      int64 // bytes
	AllowedMimeTypes []string
	// RequireReview makes approve and reject accept only documents in review.
	RequireReview bool
	PresignExpiry time.Duration
	// SearchBatch is how many rows search loads per round trip before access filtering.
	SearchBatch int
}

// DocumentService handles all document-related business logic
type DocumentService struct {
	docRepo      repositories.DocumentRepository
	commentRepo  repositories.DocumentCommentRepository
	shareRepo    repositories.ShareRepository
	userRepo     repositories.UserRepository
	propertyRepo repositories.PropertyRepository

	access   *AccessResolver
	storage  StorageService
	hasher   PasswordHasher
	recorder *Recorder
	log      *logger.Logger
	config   DocumentServiceConfig
	now      func() time.Time
}

// DocumentServiceDeps groups the collaborators of NewDocumentService.
type DocumentServiceDeps struct {
	DocumentRepo repositories.DocumentRepository
	CommentRepo  repositories.DocumentCommentRepository
	ShareRepo    repositories.ShareRepository
	UserRepo     repositories.UserRepository
	PropertyRepo repositories.PropertyRepository
	Access       *AccessResolver
	Storage      StorageService
	Hasher       PasswordHasher
	Recorder     *Recorder
	Logger       *logger.Logger
}

// NewDocumentService creates a new document service instance
func NewDocumentService(deps DocumentServiceDeps, config DocumentServiceConfig) *DocumentService {
	if config.PresignExpiry <= 0 {
		config.PresignExpiry = 15 * time.Minute
	}
	if config.SearchBatch <= 0 {
		config.SearchBatch = 500
	}
	return &DocumentService{
		docRepo:      deps.DocumentRepo,
		commentRepo:  deps.CommentRepo,
		shareRepo:    deps.ShareRepo,
		userRepo:     deps.UserRepo,
		propertyRepo: deps.PropertyRepo,
		access:       deps.Access,
		storage:      deps.Storage,
		hasher:       deps.Hasher,
		recorder:     deps.Recorder,
		log:          deps.Logger,
		config:       config,
		now:          time.Now,
	}
}

// DocumentAttributes are the descriptive fields of a document row.
type DocumentAttributes struct {
	Name         string
	Description  string
	Type         models.DocumentType
	Category     string
	Tags         []string
	PropertyID   *uuid.UUID
	MilestoneID  *uuid.UUID
	AccessLevel  models.AccessLevel
	AllowedUsers []string
	AllowedRoles []string
	ExpiresAt    *time.Time
}

// FileAttributes describe the stored object behind a document row.
type FileAttributes struct {
	StoragePath      string
	OriginalFilename string
	FileSize         int64
	MimeType         string
	Checksum         string
}

// CreateDocumentParams registers an object that is already in storage.
type CreateDocumentParams struct {
	DocumentAttributes
	FileAttributes
}

// UploadDocumentParams streams a new object through the service.
type UploadDocumentParams struct {
	DocumentAttributes
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadTicket is a pre-signed direct upload target.
type UploadTicket struct {
	UploadURL   string
	StoragePath string
	ExpiresAt   time.Time
}

// DocumentPatch mutates descriptive fields in place.
type DocumentPatch interface {
	Apply(doc *models.Document)
}

// SearchParams are the caller-facing search options.
type SearchParams struct {
	repositories.DocumentSearchQuery
	Page     int
	PageSize int
}

// NewStorageKey builds documents/<yyyy>/<mm>/<uuid><ext> for a client filename.
func NewStorageKey(filename string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("documents", at.UTC().Format("2006"), at.UTC().Format("01"), uuid.NewString()+ext)
}

func (s *DocumentService) validateFile(filename, contentType string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return validationError("filename is required")
	}
	if size <= 0 {
		return validationError("file is empty")
	}
	if s.config.MaxFileSize > 0 && size > s.config.MaxFileSize {
		return validationError("file exceeds maximum size of %d bytes", s.config.MaxFileSize)
	}
	if !s.isAllowedMimeType(contentType) {
		return validationError("unsupported content type %q", contentType)
	}
	return nil
}

func (s *DocumentService) isAllowedMimeType(contentType string) bool {
	if len(s.config.AllowedMimeTypes) == 0 {
		return true
	}
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, allowed := range s.config.AllowedMimeTypes {
		if strings.EqualFold(allowed, base) {
			return true
		}
	}
	return false
}

// RequestUploadURL validates the file and returns a pre-signed PUT target for it.
func (s *DocumentService) RequestUploadURL(ctx context.Context, actor Actor, filename, contentType string, size int64) (*UploadTicket, error) {
	if err := s.validateFile(filename, contentType, size); err != nil {
		return nil, err
	}

	now := s.now()
	key := NewStorageKey(filename, now)
	url, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.config.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.log.Debug("issued upload url", "user_id", actor.UserID, "storage_path", key)
	return &UploadTicket{UploadURL: url, StoragePath: key, ExpiresAt: now.Add(s.config.PresignExpiry)}, nil
}

// CreateDocument records version 1 of a directly uploaded object and applies its ACL.
func (s *DocumentService) CreateDocument(ctx context.Context, actor Actor, params CreateDocumentParams) (*models.Document, error) {
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

	doc, err := s.newDocument(ctx, actor, params.DocumentAttributes, params.FileAttributes)
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.applyACL(ctx, doc)
	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditCreate,
		EntityType:  documentEntity,
		EntityID:    doc.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Uploaded document %q", doc.Name),
		After:       doc,
	})
	return doc, nil
}

// UploadDocument stores the stream, hashing it on the way, then records version 1.
func (s *DocumentService) UploadDocument(ctx context.Context, actor Actor, params UploadDocumentParams) (*models.Document, error) {
	if err := s.validateFile(params.Filename, params.ContentType, params.Size); err != nil {
		return nil, err
	}
	if params.Content == nil {
		return nil, validationError("file content is required")
	}

	key := NewStorageKey(params.Filename, s.now())
	hasher := sha256.New()
	reader := io.TeeReader(params.Content, hasher)

	storedPath, err := s.storage.Store(ctx, StorageParams{
		Path:        key,
		FileReader:  reader,
		ContentType: params.ContentType,
		Size:        params.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to store file: %v", ErrUpstream, err)
	}

	file := FileAttributes{
		StoragePath:      storedPath,
		OriginalFilename: params.Filename,
		FileSize:         params.Size,
		MimeType:         params.ContentType,
		Checksum:         hex.EncodeToString(hasher.Sum(nil)),
	}
	doc, err := s.newDocument(ctx, actor, params.DocumentAttributes, file)
	if err != nil {
		s.deleteObject(ctx, storedPath)
		return nil, err
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		s.deleteObject(ctx, storedPath)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.applyACL(ctx, doc)
	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditCreate,
		EntityType:  documentEntity,
		EntityID:    doc.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Uploaded document %q", doc.Name),
		After:       doc,
	})
	return doc, nil
}

func (s *DocumentService) newDocument(ctx context.Context, actor Actor, attrs DocumentAttributes, file FileAttributes) (*models.Document, error) {
	if attrs.PropertyID != nil {
		if _, err := s.propertyRepo.GetByID(ctx, *attrs.PropertyID); err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return nil, validationError("property %s does not exist", attrs.PropertyID)
			}
			return nil, fmt.Errorf("failed to load property: %w", err)
		}
	}

	name := strings.TrimSpace(attrs.Name)
	if name == "" {
		name = file.OriginalFilename
	}
	docType := attrs.Type
	if docType == "" {
		docType = models.DocTypeOther
	}
	level := attrs.AccessLevel
	if level == "" {
		level = models.AccessProjectTeam
	}

	return &models.Document{
		Name:             name,
		Description:      attrs.Description,
		Type:             docType,
		Category:         attrs.Category,
		Tags:             models.StringList(attrs.Tags),
		PropertyID:       attrs.PropertyID,
		MilestoneID:      attrs.MilestoneID,
		StoragePath:      file.StoragePath,
		OriginalFilename: file.OriginalFilename,
		FileSize:         file.FileSize,
		MimeType:         file.MimeType,
		Checksum:         file.Checksum,
		Version:          1,
		IsLatestVersion:  true,
		AccessLevel:      level,
		AllowedUsers:     models.StringList(attrs.AllowedUsers),
		AllowedRoles:     models.StringList(attrs.AllowedRoles),
		Status:           models.DocStatusDraft,
		UploadedBy:       actor.UserID,
		ExpiresAt:        attrs.ExpiresAt,
	}, nil
}

func validStoragePath(p string) error {
	if p == "" {
		return validationError("storage_path is required")
	}
	clean := path.Clean(p)
	if clean != p || strings.HasPrefix(clean, "/") || strings.Contains(clean, "..") || !strings.HasPrefix(clean, "documents/") {
		return validationError("storage_path %q is not a document key", p)
	}
	return nil
}

// applyACL pushes visibility and owner to the object; failures are logged only.
func (s *DocumentService) applyACL(ctx context.Context, doc *models.Document) {
	acl := ACL{Visibility: VisibilityPrivate, OwnerID: doc.UploadedBy}
	if doc.AccessLevel == models.AccessPublic {
		acl.Visibility = VisibilityPublic
	}
	if err := s.storage.ApplyACL(ctx, doc.StoragePath, acl); err != nil {
		s.log.Warn("failed to apply storage acl",
			"document_id", doc.ID,
			"storage_path", doc.StoragePath,
			"error", err)
	}
}

func (s *DocumentService) deleteObject(ctx context.Context, storagePath string) {
	if err := s.storage.Delete(ctx, storagePath); err != nil {
		s.log.Warn("failed to delete stored object", "storage_path", storagePath, "error", err)
	}
}

// load fetches a document and checks read access. Unknown ids are ErrNotFound, denials ErrForbidden.
func (s *DocumentService) load(ctx context.Context, actor Actor, id uuid.UUID) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get document")
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

// loadForManage also requires the actor to be the uploader or a manager on the document's property.
func (s *DocumentService) loadForManage(ctx context.Context, actor Actor, id uuid.UUID) (*models.Document, error) {
	doc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if doc.UploadedBy == actor.UserID {
		return doc, nil
	}
	if ok, err := s.isManager(ctx, actor, doc); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *DocumentService) isManager(ctx context.Context, actor Actor, doc *models.Document) (bool, error) {
	subject, err := s.access.SubjectFor(ctx, actor, doc.PropertyID)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate access: %w", err)
	}
	return subject.Role == models.UserRoleOwner || subject.Role == models.UserRolePM, nil
}

// GetDocument returns a readable document by id, archived or not.
func (s *DocumentService) GetDocument(ctx context.Context, actor Actor, id uuid.UUID) (*models.Document, error) {
	return s.load(ctx, actor, id)
}

// UpdateDocument edits descriptive fields of one version row.
func (s *DocumentService) UpdateDocument(ctx context.Context, actor Actor, id uuid.UUID, patch DocumentPatch) (*models.Document, error) {
	doc, err := s.loadForManage(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := *doc

	patch.Apply(doc)
	if strings.TrimSpace(doc.Name) == "" {
		return nil, validationError("name must not be empty")
	}
	modifier := actor.UserID
	doc.LastModifiedBy = &modifier

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	if before.AccessLevel != doc.AccessLevel {
		s.applyACL(ctx, doc)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  documentEntity,
		EntityID:    doc.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Updated document %q", doc.Name),
		Before:      before,
		After:       doc,
	})
	return doc, nil
}

// DeleteDocument removes one row; the stored object is removed afterwards on a best-effort basis.
func (s *DocumentService) DeleteDocument(ctx context.Context, actor Actor, id uuid.UUID) error {
	doc, err := s.loadForManage(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.docRepo.Delete(ctx, id); err != nil {
		return translate(err, "delete document")
	}
	s.deleteObject(ctx, doc.StoragePath)

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditDelete,
		EntityType:  documentEntity,
		EntityID:    doc.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Deleted document %q (v%d)", doc.Name, doc.Version),
		Before:      doc,
	})
	return nil
}

// SearchDocuments runs the conjunctive filter and drops rows the actor cannot read.
func (s *DocumentService) SearchDocuments(ctx context.Context, actor Actor, params SearchParams) ([]models.Document, int64, error) {
	snapshot, err := s.access.Snapshot(ctx, actor)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to evaluate access: %w", err)
	}

	pageParams := repositories.ListParams{Page: params.Page, PageSize: params.PageSize}
	start := pageParams.Offset()
	end := start + pageParams.Limit()

	// Matches are walked in batches; every readable one counts toward total, only the page is kept.
	query := params.DocumentSearchQuery
	query.Limit = s.config.SearchBatch
	query.Offset = 0
	page := []models.Document{}
	var visible int
	for {
		batch, err := s.docRepo.Search(ctx, query)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to search documents: %w", err)
		}
		for i := range batch {
			if !snapshot.CanRead(&batch[i]) {
				continue
			}
			if visible >= start && visible < end {
				page = append(page, batch[i])
			}
			visible++
		}
		if len(batch) < query.Limit {
			break
		}
		query.Offset += len(batch)
	}
	return page, int64(visible), nil
}

// DownloadURL returns a short-lived GET URL for a readable document.
func (s *DocumentService) DownloadURL(ctx context.Context, actor Actor, id uuid.UUID) (string, *models.Document, error) {
	doc, err := s.load(ctx, actor, id)
	if err != nil {
		return "", nil, err
	}
	url, err := s.storage.GeneratePresignedURL(ctx, doc.StoragePath, s.config.PresignExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditAccess,
		EntityType:  documentEntity,
		EntityID:    doc.ID,
		PropertyID:  doc.PropertyID,
		Description: fmt.Sprintf("Downloaded document %q", doc.Name),
	})
	return url, doc, nil
}

// OpenContent streams a readable document's object. The caller closes the reader.
func (s *DocumentService) OpenContent(ctx context.Context, actor Actor, id uuid.UUID) (io.ReadCloser, *models.Document, error) {
	doc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.storage.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return reader, doc, nil
}
