package handlers

import (
	"github.com/buildtrack/buildtrack/internal/domain/dto"
	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
)

// VendorHandler handles the company-wide vendor directory
type VendorHandler struct {
	*BaseHandler
	vendorService *services.VendorService
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(base *BaseHandler, vendorService *services.VendorService) *VendorHandler {
	return &VendorHandler{
		BaseHandler:   base,
		vendorService: vendorService,
	}
}

// RegisterRoutes registers all vendor routes
func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	vendors := router.Group("/vendors")
	{
		vendors.GET("", h.ListVendors)
		vendors.POST("", h.CreateVendor)
		vendors.GET("/:id", h.GetVendor)
		vendors.PUT("/:id", h.UpdateVendor)
		vendors.DELETE("/:id", h.DeleteVendor)
	}
}

// ListVendors lists vendors, optionally by trade and status
// @Summary List vendors
// @Tags vendors
// @Produce json
// @Param trade query string false "Trade"
// @Param status query string false "active or inactive"
// @Param search query string false "Name or company search"
// @Success 200 {object} PaginatedResponse
// @Router /vendors [get]
func (h *VendorHandler) ListVendors(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}

	filters := repositories.VendorFilters{
		ListParams: h.ParseListParams(c, "name"),
		Trade:      c.Query("trade"),
		Status:     models.VendorStatus(c.Query("status")),
	}

	vendors, total, err := h.vendorService.ListVendors(c.Request.Context(), filters)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondPage(c, vendors, total, filters.Page, filters.PageSize)
}

// CreateVendor adds a vendor to the directory
// @Summary Create vendor
// @Tags vendors
// @Accept json
// @Produce json
// @Param request body dto.CreateVendorRequest true "Vendor"
// @Success 201 {object} models.Vendor
// @Router /vendors [post]
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.CreateVendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), actor, req.Model())
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, vendor)
}

// GetVendor returns one vendor
// @Summary Get vendor
// @Tags vendors
// @Produce json
// @Param id path string true "Vendor ID"
// @Success 200 {object} models.Vendor
// @Router /vendors/{id} [get]
func (h *VendorHandler) GetVendor(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	vendor, err := h.vendorService.GetVendor(c.Request.Context(), id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, vendor)
}

// UpdateVendor applies a partial update
// @Summary Update vendor
// @Tags vendors
// @Accept json
// @Produce json
// @Param id path string true "Vendor ID"
// @Param request body dto.UpdateVendorRequest true "Changes"
// @Success 200 {object} models.Vendor
// @Router /vendors/{id} [put]
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateVendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, vendor)
}

// DeleteVendor removes a vendor
// @Summary Delete vendor
// @Tags vendors
// @Param id path string true "Vendor ID"
// @Success 204
// @Router /vendors/{id} [delete]
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	actor, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.vendorService.DeleteVendor(c.Request.Context(), actor, id); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondNoContent(c)
}
