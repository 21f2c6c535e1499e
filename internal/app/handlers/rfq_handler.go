package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// RFQHandler handles requests for quotation and the bids against them
type RFQHandler struct {
	*recordHandler[models.RFQ, dto.CreateRFQRequest, dto.UpdateRFQRequest, *dto.CreateRFQRequest, *dto.UpdateRFQRequest]
	rfqService *services.RFQService
}

// NewRFQHandler creates a new RFQ handler
func NewRFQHandler(base *BaseHandler, rfqService *services.RFQService) *RFQHandler {
	return &RFQHandler{
		recordHandler: newRecordHandler[models.RFQ, dto.CreateRFQRequest, dto.UpdateRFQRequest, *dto.CreateRFQRequest, *dto.UpdateRFQRequest](base, rfqService),
		rfqService:    rfqService,
	}
}

// RegisterRoutes registers all RFQ and bid routes
func (h *RFQHandler) RegisterRoutes(router *gin.RouterGroup) {
	h.register(router, "rfqs", "rfqs")
	router.GET("/rfqs/:id/bids", h.ListBids)
	router.POST("/rfqs/:id/bids", h.SubmitBid)
	router.POST("/rfqs/:id/award", h.AwardBid)
	router.PUT("/bids/:id", h.UpdateBid)
}

// ListBids lists the bids received for an RFQ
// @Summary List bids
// @Tags rfqs
// @Produce json
// @Param id path string true "RFQ ID"
// @Success 200 {object} PaginatedResponse
// @Router /rfqs/{id}/bids [get]
func (h *RFQHandler) ListBids(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	rfqID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	bids, err := h.rfqService.ListBids(c.Request.Context(), actor, rfqID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	respondSlice(h.BaseHandler, c, bids)
}

// SubmitBid records a vendor's bid on an open RFQ
// @Summary Submit bid
// @Tags rfqs
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body dto.CreateBidRequest true "Bid"
// @Success 201 {object} models.Bid
// @Failure 409 {object} ErrorResponse
// @Router /rfqs/{id}/bids [post]
func (h *RFQHandler) SubmitBid(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	rfqID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateBidRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bid, err := h.rfqService.SubmitBid(c.Request.Context(), actor, rfqID, req.Model(rfqID))
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, bid)
}

// UpdateBid revises a bid that has not been decided
// @Summary Update bid
// @Tags rfqs
// @Accept json
// @Produce json
// @Param id path string true "Bid ID"
// @Param request body dto.UpdateBidRequest true "Changes"
// @Success 200 {object} models.Bid
// @Router /bids/{id} [put]
func (h *RFQHandler) UpdateBid(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	bidID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBidRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bid, err := h.rfqService.UpdateBid(c.Request.Context(), actor, bidID, &req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, bid)
}

// AwardBid accepts one bid and rejects the rest
// @Summary Award bid
// @Tags rfqs
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body dto.AwardBidRequest true "Winning bid"
// @Success 200 {object} models.RFQ
// @Failure 409 {object} ErrorResponse
// @Router /rfqs/{id}/award [post]
func (h *RFQHandler) AwardBid(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	rfqID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AwardBidRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rfq, err := h.rfqService.AwardBid(c.Request.Context(), actor, rfqID, req.BidID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, rfq)
}
