package handlers

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// recordAPI is what a property-scoped record service exposes over HTTP.
type recordAPI[T any] interface {
	Create(ctx context.Context, actor services.Actor, entity *T) (*T, error)
	Get(ctx context.Context, actor services.Actor, id uuid.UUID) (*T, error)
	ListByProperty(ctx context.Context, actor services.Actor, propertyID uuid.UUID) ([]T, error)
	Update(ctx context.Context, actor services.Actor, id uuid.UUID, patch services.Patch[T]) (*T, error)
	Delete(ctx context.Context, actor services.Actor, id uuid.UUID) error
}

// recordHandler serves list, create, get, update and delete for one record type.
// C is the create request and U the update request; both are bound from JSON.
type recordHandler[T any, C any, U any, PC interface {
	*C
	Model() *T
}, PU interface {
	*U
	Apply(*T)
}] struct {
	*BaseHandler
	service recordAPI[T]
}

func newRecordHandler[T any, C any, U any, PC interface {
	*C
	Model() *T
}, PU interface {
	*U
	Apply(*T)
}](base *BaseHandler, service recordAPI[T]) *recordHandler[T, C, U, PC, PU] {
	return &recordHandler[T, C, U, PC, PU]{BaseHandler: base, service: service}
}

// register mounts GET /properties/:id/<listPath> and the CRUD routes under /<collection>.
func (h *recordHandler[T, C, U, PC, PU]) register(router *gin.RouterGroup, listPath, collection string) {
	router.GET("/properties/:id/"+listPath, h.List)
	router.POST("/"+collection, h.Create)
	router.GET("/"+collection+"/:id", h.Get)
	router.PUT("/"+collection+"/:id", h.Update)
	router.DELETE("/"+collection+"/:id", h.Delete)
}

func (h *recordHandler[T, C, U, PC, PU]) List(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	propertyID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ListByProperty(c.Request.Context(), actor, propertyID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	respondSlice(h.BaseHandler, c, items)
}

func (h *recordHandler[T, C, U, PC, PU]) Create(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	req := PC(new(C))
	if !h.BindJSON(c, req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, req.Model())
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, created)
}

func (h *recordHandler[T, C, U, PC, PU]) Get(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, entity)
}

func (h *recordHandler[T, C, U, PC, PU]) Update(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	req := PU(new(U))
	if !h.BindJSON(c, req) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, updated)
}

func (h *recordHandler[T, C, U, PC, PU]) Delete(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondNoContent(c)
}

// respondSlice pages an already loaded list according to the query parameters.
func respondSlice[T any](b *BaseHandler, c *gin.Context, items []T) {
	page, pageSize := b.ParsePagination(c)
	if items == nil {
		items = []T{}
	}
	total := len(items)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	b.RespondPage(c, items[start:end], int64(total), page, pageSize)
}
