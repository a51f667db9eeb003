package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/florexport/backend/internal/application/partner"
)

// FarmHandler handles farm API endpoints
type FarmHandler struct {
	BaseHandler
	farms *partnerapp.FarmService
}

// NewFarmHandler creates a new FarmHandler
func NewFarmHandler(farms *partnerapp.FarmService) *FarmHandler {
	return &FarmHandler{farms: farms}
}

// RegisterRoutes registers farm routes on the given group
func (h *FarmHandler) RegisterRoutes(rg *gin.RouterGroup) {
	farms := rg.Group("/farms")
	{
		farms.POST("", h.Create)
		farms.GET("", h.List)
		farms.GET("/:id", h.Get)
		farms.GET("/code/:code", h.GetByCode)
		farms.PUT("/:id", h.Update)
		farms.DELETE("/:id", h.Delete)
		farms.POST("/:id/activate", h.Activate)
		farms.POST("/:id/deactivate", h.Deactivate)
	}
}

// Create creates a new farm
func (h *FarmHandler) Create(c *gin.Context) {
	var req partnerapp.CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	farm, err := h.farms.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, farm)
}

// List lists farms with pagination and search
func (h *FarmHandler) List(c *gin.Context) {
	var filter partnerapp.PartnerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	farms, total, err := h.farms.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, farms, total, filter.Page, filter.PageSize)
}

// Get retrieves a farm by ID
func (h *FarmHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	farm, err := h.farms.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, farm)
}

// GetByCode retrieves a farm by its code
func (h *FarmHandler) GetByCode(c *gin.Context) {
	farm, err := h.farms.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, farm)
}

// Update updates a farm
func (h *FarmHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	var req partnerapp.UpdateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	farm, err := h.farms.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, farm)
}

// Delete deletes a farm
func (h *FarmHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	if err := h.farms.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate marks a farm as active
func (h *FarmHandler) Activate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	farm, err := h.farms.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, farm)
}

// Deactivate marks a farm as inactive
func (h *FarmHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	farm, err := h.farms.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, farm)
}
