package handlers

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// SignedFileStore is a storage backend whose pre-signed URLs point back at the API.
type SignedFileStore interface {
	services.StorageService
	Verify(method, path, expires, signature string) error
}

// FileHandler serves the pre-signed upload and download URLs of the local storage backend
type FileHandler struct {
	*BaseHandler
	store SignedFileStore
}

// NewFileHandler creates a new file handler
func NewFileHandler(base *BaseHandler, store SignedFileStore) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		store:       store,
	}
}

// RegisterRoutes registers the signed file routes; they authenticate by signature, not session
func (h *FileHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/files/*path", h.Download)
	router.PUT("/files/*path", h.Upload)
}

func (h *FileHandler) verify(c *gin.Context) (string, bool) {
	key := strings.TrimPrefix(c.Param("path"), "/")
	if key == "" {
		h.RespondNotFound(c, "File not found")
		return "", false
	}
	if err := h.store.Verify(c.Request.Method, key, c.Query("expires"), c.Query("signature")); err != nil {
		h.RespondError(c, http.StatusForbidden, "access_denied", "Invalid or expired file URL")
		return "", false
	}
	return key, true
}

// Download streams a stored object
func (h *FileHandler) Download(c *gin.Context) {
	key, ok := h.verify(c)
	if !ok {
		return
	}

	reader, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			h.RespondNotFound(c, "File not found")
			return
		}
		h.RespondServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}

// Upload receives the body of a pre-signed PUT
func (h *FileHandler) Upload(c *gin.Context) {
	key, ok := h.verify(c)
	if !ok {
		return
	}
	if c.Request.ContentLength > h.config.MaxFileSize {
		h.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "File is too large")
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxFileSize)
	if _, err := h.store.Store(c.Request.Context(), services.StorageParams{
		Path:        key,
		FileReader:  body,
		ContentType: c.ContentType(),
		Size:        c.Request.ContentLength,
	}); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
