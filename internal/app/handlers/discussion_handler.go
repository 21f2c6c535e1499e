package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DiscussionHandler handles project discussion threads
type DiscussionHandler struct {
	*recordHandler[models.Discussion, dto.CreateDiscussionRequest, dto.UpdateDiscussionRequest, *dto.CreateDiscussionRequest, *dto.UpdateDiscussionRequest]
	discussionService *services.DiscussionService
}

// NewDiscussionHandler creates a new discussion handler
func NewDiscussionHandler(base *BaseHandler, discussionService *services.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{
		recordHandler:     newRecordHandler[models.Discussion, dto.CreateDiscussionRequest, dto.UpdateDiscussionRequest, *dto.CreateDiscussionRequest, *dto.UpdateDiscussionRequest](base, discussionService),
		discussionService: discussionService,
	}
}

// RegisterRoutes registers all discussion routes
func (h *DiscussionHandler) RegisterRoutes(router *gin.RouterGroup) {
	h.register(router, "discussions", "discussions")
	router.GET("/discussions/:id/comments", h.ListComments)
	router.POST("/discussions/:id/comments", h.AddComment)
	router.POST("/discussions/:id/reactions", h.AddReaction)
	router.DELETE("/discussions/:id/reactions", h.RemoveReaction)
}

// ListComments lists the replies of a thread in posting order
// @Summary List discussion comments
// @Tags discussions
// @Produce json
// @Param id path string true "Discussion ID"
// @Success 200 {object} PaginatedResponse
// @Router /discussions/{id}/comments [get]
func (h *DiscussionHandler) ListComments(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	comments, err := h.discussionService.ListComments(c.Request.Context(), actor, id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	respondSlice(h.BaseHandler, c, comments)
}

// AddComment replies to a thread
// @Summary Add discussion comment
// @Tags discussions
// @Accept json
// @Produce json
// @Param id path string true "Discussion ID"
// @Param request body dto.CreateDiscussionCommentRequest true "Comment"
// @Success 201 {object} models.DiscussionComment
// @Failure 409 {object} ErrorResponse
// @Router /discussions/{id}/comments [post]
func (h *DiscussionHandler) AddComment(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateDiscussionCommentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	comment, err := h.discussionService.AddComment(c.Request.Context(), actor, id, req.Body, req.ParentCommentID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, comment)
}

// AddReaction reacts to the thread or one of its comments; repeating it is a no-op
// @Summary Add reaction
// @Tags discussions
// @Accept json
// @Produce json
// @Param id path string true "Discussion ID"
// @Param request body dto.ReactionRequest true "Reaction"
// @Success 200 {object} models.DiscussionReaction
// @Router /discussions/{id}/reactions [post]
func (h *DiscussionHandler) AddReaction(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	reaction, err := h.discussionService.AddReaction(c.Request.Context(), actor, id, req.CommentID, req.Emoji)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, reaction)
}

// RemoveReaction withdraws the caller's reaction. The emoji and comment_id
// may come from the query string or a JSON body.
// @Summary Remove reaction
// @Tags discussions
// @Param id path string true "Discussion ID"
// @Param emoji query string false "Emoji"
// @Param comment_id query string false "Comment ID"
// @Success 204
// @Router /discussions/{id}/reactions [delete]
func (h *DiscussionHandler) RemoveReaction(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if emoji := c.Query("emoji"); emoji != "" {
		req.Emoji = emoji
		var commentID *uuid.UUID
		if commentID, ok = getUUIDParam(c, "comment_id"); !ok {
			h.RespondBadRequest(c, "Invalid comment_id format")
			return
		}
		req.CommentID = commentID
	} else if !h.BindJSON(c, &req) {
		return
	}

	if err := h.discussionService.RemoveReaction(c.Request.Context(), actor, id, req.CommentID, req.Emoji); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondNoContent(c)
}
