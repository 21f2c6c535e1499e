package handlers

import (
	"context"
	"net/http"

	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for document operations
type DocumentHandler struct {
	*BaseHandler
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(base *BaseHandler, documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     base,
		documentService: documentService,
	}
}

// ShareAccessResponse is what a share link resolves to
type ShareAccessResponse struct {
	Share       *models.DocumentShare `json:"share"`
	Document    *models.Document      `json:"document"`
	DownloadURL string                `json:"download_url,omitempty"`
}

// RegisterRoutes registers all document routes
func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	documents := router.Group("/documents")
	{
		// Upload
		documents.POST("/upload-url", h.RequestUploadURL)
		documents.POST("", h.RegisterDocument)
		documents.POST("/upload", h.UploadDocument)

		// CRUD and search
		documents.GET("", h.SearchDocuments)
		documents.GET("/:id", h.GetDocument)
		documents.PUT("/:id", h.UpdateDocument)
		documents.DELETE("/:id", h.DeleteDocument)
		documents.GET("/:id/download", h.DownloadDocument)

		// Versions
		documents.POST("/:id/versions", h.CreateVersion)
		documents.GET("/:id/versions", h.GetVersionHistory)
		documents.GET("/:id/latest", h.GetLatestVersion)

		// Workflow
		documents.POST("/:id/submit", h.SubmitForReview)
		documents.POST("/:id/approve", h.Approve)
		documents.POST("/:id/reject", h.Reject)
		documents.POST("/:id/archive", h.Archive)

		// Comments
		documents.GET("/:id/comments", h.ListComments)
		documents.POST("/:id/comments", h.AddComment)
		documents.PUT("/comments/:commentId/resolve", h.ResolveComment)

		// Shares
		documents.GET("/:id/shares", h.ListShares)
		documents.POST("/:id/shares", h.CreateShare)
		documents.DELETE("/shares/:shareId", h.RevokeShare)
	}
}

// RegisterPublicRoutes registers the routes reachable through a share token
func (h *DocumentHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/shares/:token/access", h.AccessShare)
}

func toServiceAttributes(a dto.DocumentAttributes) services.DocumentAttributes {
	return services.DocumentAttributes{
		Name:         a.Name,
		Description:  a.Description,
		Type:         a.Type,
		Category:     a.Category,
		Tags:         a.Tags,
		PropertyID:   a.PropertyID,
		MilestoneID:  a.MilestoneID,
		AccessLevel:  a.AccessLevel,
		AllowedUsers: a.AllowedUsers,
		AllowedRoles: a.AllowedRoles,
		ExpiresAt:    a.ExpiresAt,
	}
}

// RequestUploadURL returns a pre-signed URL for a direct upload
// @Summary Request upload URL
// @Tags documents
// @Accept json
// @Produce json
// @Param request body dto.UploadURLRequest true "File description"
// @Success 200 {object} dto.UploadURLResponse
// @Router /documents/upload-url [post]
func (h *DocumentHandler) RequestUploadURL(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.UploadURLRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ticket, err := h.documentService.RequestUploadURL(c.Request.Context(), actor, req.Filename, req.ContentType, req.Size)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, dto.UploadURLResponse{
		UploadURL:   ticket.UploadURL,
		StoragePath: ticket.StoragePath,
		ExpiresAt:   ticket.ExpiresAt,
	})
}

// RegisterDocument records an object that was uploaded to a pre-signed URL
// @Summary Register uploaded document
// @Tags documents
// @Accept json
// @Produce json
// @Param request body dto.RegisterDocumentRequest true "Document"
// @Success 201 {object} models.Document
// @Router /documents [post]
func (h *DocumentHandler) RegisterDocument(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.RegisterDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), actor, services.CreateDocumentParams{
		DocumentAttributes: toServiceAttributes(req.DocumentAttributes),
		FileAttributes: services.FileAttributes{
			StoragePath:      req.StoragePath,
			OriginalFilename: req.OriginalFilename,
			FileSize:         req.FileSize,
			MimeType:         req.MimeType,
			Checksum:         req.Checksum,
		},
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, doc)
}

// UploadDocument handles a multipart upload through the API
// @Summary Upload document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Param name formData string false "Document name"
// @Param property_id formData string false "Property ID"
// @Success 201 {object} models.Document
// @Failure 400 {object} ErrorResponse
// @Router /documents/upload [post]
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxFileSize+h.config.MaxMultipartMemory)
	if err := c.Request.ParseMultipartForm(h.config.MaxMultipartMemory); err != nil {
		h.RespondBadRequest(c, "Invalid multipart form", err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondBadRequest(c, "No file provided", err.Error())
		return
	}
	if !h.config.ValidateFileSize(fileHeader.Size) {
		h.RespondBadRequest(c, "File is too large")
		return
	}

	var attrs dto.DocumentAttributes
	if err := c.ShouldBind(&attrs); err != nil {
		h.RespondBadRequest(c, "Invalid document attributes", err.Error())
		return
	}
	if attrs.PropertyID, ok = formUUID(c, "property_id"); !ok {
		h.RespondBadRequest(c, "Invalid property_id format")
		return
	}
	if attrs.MilestoneID, ok = formUUID(c, "milestone_id"); !ok {
		h.RespondBadRequest(c, "Invalid milestone_id format")
		return
	}
	if raw := c.PostForm("expires_at"); raw != "" {
		expires, err := parseDate(raw)
		if err != nil {
			h.RespondBadRequest(c, "Invalid expires_at format")
			return
		}
		attrs.ExpiresAt = &expires
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondBadRequest(c, "Failed to read uploaded file", err.Error())
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.documentService.UploadDocument(c.Request.Context(), actor, services.UploadDocumentParams{
		DocumentAttributes: toServiceAttributes(attrs),
		Filename:           fileHeader.Filename,
		ContentType:        contentType,
		Size:               fileHeader.Size,
		Content:            file,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, doc)
}

// formUUID parses an optional UUID form field; ok is false when it is malformed
func formUUID(c *gin.Context, field string) (*uuid.UUID, bool) {
	value := c.PostForm(field)
	if value == "" {
		return nil, true
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// SearchDocuments lists the readable documents matching every given filter
// @Summary Search documents
// @Tags documents
// @Produce json
// @Param search query string false "Name or description substring"
// @Param category query string false "Category"
// @Param tags query string false "Comma-separated tags, all required"
// @Param include_archived query bool false "Include archived documents"
// @Param all_versions query bool false "Include superseded versions"
// @Success 200 {object} PaginatedResponse
// @Router /documents [get]
func (h *DocumentHandler) SearchDocuments(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	query := repositories.DocumentSearchQuery{
		Query:           c.Query("search"),
		Category:        c.Query("category"),
		Tags:            getStringArrayParam(c, "tags"),
		IncludeArchived: getBoolParam(c, "include_archived", false),
		AllVersions:     getBoolParam(c, "all_versions", false),
	}
	if query.Query == "" {
		query.Query = c.Query("q")
	}
	for param, dst := range map[string]**uuid.UUID{
		"property_id":  &query.PropertyID,
		"milestone_id": &query.MilestoneID,
		"uploaded_by":  &query.UploadedBy,
	} {
		id, ok := getUUIDParam(c, param)
		if !ok {
			h.RespondBadRequest(c, "Invalid "+param+" format")
			return
		}
		*dst = id
	}
	if raw := c.Query("type"); raw != "" {
		docType := models.DocumentType(raw)
		query.Type = &docType
	}
	if raw := c.Query("status"); raw != "" {
		status := models.DocStatus(raw)
		query.Status = &status
	}
	query.DateFrom, query.DateTo = parseDateRange(c, "date_from", "date_to")

	docs, total, err := h.documentService.SearchDocuments(c.Request.Context(), actor, services.SearchParams{
		DocumentSearchQuery: query,
		Page:                page,
		PageSize:            pageSize,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondPage(c, docs, total, page, pageSize)
}

// GetDocument returns a readable document, archived ones included
// @Summary Get document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.Document
// @Failure 403 {object} ErrorResponse
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	h.withDocument(c, h.documentService.GetDocument)
}

// UpdateDocument changes descriptive fields and the access policy
// @Summary Update document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body dto.UpdateDocumentRequest true "Changes"
// @Success 200 {object} models.Document
// @Router /documents/{id} [put]
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.UpdateDocument(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, doc)
}

// DeleteDocument removes one version; the chain keeps exactly one latest
// @Summary Delete document
// @Tags documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), actor, id); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondNoContent(c)
}

// DownloadDocument returns a pre-signed URL, or the content itself with stream=true
// @Summary Download document
// @Tags documents
// @Param id path string true "Document ID"
// @Param stream query bool false "Stream the file instead of returning a URL"
// @Success 200
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	if getBoolParam(c, "stream", false) {
		reader, doc, err := h.documentService.OpenContent(c.Request.Context(), actor, id)
		if err != nil {
			h.RespondServiceError(c, err)
			return
		}
		defer reader.Close()

		c.DataFromReader(http.StatusOK, doc.FileSize, doc.MimeType, reader, map[string]string{
			"Content-Disposition": `attachment; filename="` + doc.OriginalFilename + `"`,
		})
		return
	}

	url, doc, err := h.documentService.DownloadURL(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{
		"download_url": url,
		"filename":     doc.OriginalFilename,
		"mime_type":    doc.MimeType,
		"file_size":    doc.FileSize,
	})
}

// CreateVersion appends a new version to the document's chain
// @Summary Create version
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Any document of the chain"
// @Param request body dto.CreateVersionRequest true "New file"
// @Success 201 {object} models.Document
// @Router /documents/{id}/versions [post]
func (h *DocumentHandler) CreateVersion(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateVersionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.CreateVersion(c.Request.Context(), actor, id, services.CreateVersionParams{
		DocumentAttributes: toServiceAttributes(req.DocumentAttributes),
		FileAttributes: services.FileAttributes{
			StoragePath:      req.StoragePath,
			OriginalFilename: req.OriginalFilename,
			FileSize:         req.FileSize,
			MimeType:         req.MimeType,
			Checksum:         req.Checksum,
		},
		VersionNotes: req.VersionNotes,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, doc)
}

// GetVersionHistory lists every version of the chain, newest first
// @Summary Version history
// @Tags documents
// @Produce json
// @Param id path string true "Any document of the chain"
// @Success 200 {object} PaginatedResponse
// @Router /documents/{id}/versions [get]
func (h *DocumentHandler) GetVersionHistory(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	versions, err := h.documentService.GetVersionHistory(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	respondSlice(h.BaseHandler, c, versions)
}

// GetLatestVersion resolves any member of a chain to its latest version
// @Summary Latest version
// @Tags documents
// @Produce json
// @Param id path string true "Any document of the chain"
// @Success 200 {object} models.Document
// @Router /documents/{id}/latest [get]
func (h *DocumentHandler) GetLatestVersion(c *gin.Context) {
	h.withDocument(c, h.documentService.GetLatestVersion)
}

// SubmitForReview moves a draft or rejected document into review
// @Summary Submit for review
// @Tags documents
// @Param id path string true "Document ID"
// @Success 200 {object} models.Document
// @Failure 409 {object} ErrorResponse
// @Router /documents/{id}/submit [post]
func (h *DocumentHandler) SubmitForReview(c *gin.Context) {
	h.withDocument(c, h.documentService.SubmitForReview)
}

// Approve approves a document
// @Summary Approve document
// @Tags documents
// @Accept json
// @Param id path string true "Document ID"
// @Param request body dto.ReviewRequest false "Review comments"
// @Success 200 {object} models.Document
// @Failure 409 {object} ErrorResponse
// @Router /documents/{id}/approve [post]
func (h *DocumentHandler) Approve(c *gin.Context) {
	h.review(c, h.documentService.Approve)
}

// Reject rejects a document
// @Summary Reject document
// @Tags documents
// @Accept json
// @Param id path string true "Document ID"
// @Param request body dto.ReviewRequest false "Review comments"
// @Success 200 {object} models.Document
// @Failure 409 {object} ErrorResponse
// @Router /documents/{id}/reject [post]
func (h *DocumentHandler) Reject(c *gin.Context) {
	h.review(c, h.documentService.Reject)
}

// Archive archives a document with a reason
// @Summary Archive document
// @Tags documents
// @Accept json
// @Param id path string true "Document ID"
// @Param request body dto.ArchiveRequest true "Reason"
// @Success 200 {object} models.Document
// @Router /documents/{id}/archive [post]
func (h *DocumentHandler) Archive(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ArchiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.Archive(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, doc)
}

// review runs approve or reject; the comments body is optional
func (h *DocumentHandler) review(c *gin.Context, decide func(ctx context.Context, actor services.Actor, id uuid.UUID, comments string) (*models.Document, error)) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	doc, err := decide(c.Request.Context(), actor, id, req.Comments)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, doc)
}

// withDocument serves the endpoints that take only the document id
func (h *DocumentHandler) withDocument(c *gin.Context, op func(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.Document, error)) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	doc, err := op(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, doc)
}

// ListComments lists a document's comments, nested by parent with tree=true
// @Summary List document comments
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Param tree query bool false "Nest replies under their parents"
// @Success 200 {object} PaginatedResponse
// @Router /documents/{id}/comments [get]
func (h *DocumentHandler) ListComments(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	comments, err := h.documentService.ListComments(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	if getBoolParam(c, "tree", false) {
		respondSlice(h.BaseHandler, c, services.BuildCommentTree(comments))
		return
	}
	respondSlice(h.BaseHandler, c, comments)
}

// AddComment comments on a readable document
// @Summary Add document comment
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body dto.DocumentCommentRequest true "Comment"
// @Success 201 {object} models.DocumentComment
// @Router /documents/{id}/comments [post]
func (h *DocumentHandler) AddComment(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.DocumentCommentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	comment, err := h.documentService.AddComment(c.Request.Context(), actor, id, services.AddCommentParams{
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
		Annotation:      req.Annotation,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, comment)
}

// ResolveComment marks a comment resolved, or reopens it with resolved=false
// @Summary Resolve comment
// @Tags documents
// @Accept json
// @Produce json
// @Param commentId path string true "Comment ID"
// @Param request body dto.ResolveCommentRequest false "Resolution"
// @Success 200 {object} models.DocumentComment
// @Router /documents/comments/{commentId}/resolve [put]
func (h *DocumentHandler) ResolveComment(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	commentID, ok := h.PathUUID(c, "commentId")
	if !ok {
		return
	}

	var req dto.ResolveCommentRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}
	resolved := true
	if req.Resolved != nil {
		resolved = *req.Resolved
	}

	comment, err := h.documentService.ResolveComment(c.Request.Context(), actor, commentID, resolved)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, comment)
}

// ListShares lists the shares of a document
// @Summary List shares
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} PaginatedResponse
// @Router /documents/{id}/shares [get]
func (h *DocumentHandler) ListShares(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	shares, err := h.documentService.ListShares(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	respondSlice(h.BaseHandler, c, shares)
}

// CreateShare shares a document with a user or as a public link
// @Summary Create share
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body dto.CreateShareRequest true "Share"
// @Success 201 {object} models.DocumentShare
// @Router /documents/{id}/shares [post]
func (h *DocumentHandler) CreateShare(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateShareRequest
	if !h.BindJSON(c, &req) {
		return
	}

	share, err := h.documentService.CreateShare(c.Request.Context(), actor, id, services.CreateShareParams{
		SharedWithUserID: req.SharedWithUserID,
		ExpiresAt:        req.ExpiresAt,
		CanDownload:      req.CanDownload,
		CanComment:       req.CanComment,
		Password:         req.Password,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, share)
}

// RevokeShare deactivates a share
// @Summary Revoke share
// @Tags documents
// @Param shareId path string true "Share ID"
// @Success 204
// @Router /documents/shares/{shareId} [delete]
func (h *DocumentHandler) RevokeShare(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	shareID, ok := h.PathUUID(c, "shareId")
	if !ok {
		return
	}

	if _, err := h.documentService.RevokeShare(c.Request.Context(), actor, shareID); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondNoContent(c)
}

// AccessShare opens a share link, checking its password when it has one
// @Summary Access share
// @Tags shares
// @Accept json
// @Produce json
// @Param token path string true "Share token"
// @Param request body dto.AccessShareRequest false "Password"
// @Success 200 {object} ShareAccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /shares/{token}/access [post]
func (h *DocumentHandler) AccessShare(c *gin.Context) {
	var req dto.AccessShareRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	share, err := h.documentService.AccessShare(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	url, err := h.documentService.ShareDownloadURL(c.Request.Context(), share)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, ShareAccessResponse{
		Share:       share,
		Document:    share.Document,
		DownloadURL: url,
	})
}
