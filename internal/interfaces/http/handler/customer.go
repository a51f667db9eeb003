package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/florexport/backend/internal/application/partner"
)

// CustomerHandler handles customer API endpoints
type CustomerHandler struct {
	BaseHandler
	customers *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// RegisterRoutes registers customer routes on the given group
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.POST("", h.Create)
		customers.GET("", h.List)
		customers.GET("/:id", h.Get)
		customers.GET("/code/:code", h.GetByCode)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
		customers.POST("/:id/activate", h.Activate)
		customers.POST("/:id/deactivate", h.Deactivate)
	}
}

// Create creates a new customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// List lists customers with pagination and search
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.PartnerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customers, total, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

// Get retrieves a customer by ID
func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// GetByCode retrieves a customer by its code
func (h *CustomerHandler) GetByCode(c *gin.Context) {
	customer, err := h.customers.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Update updates a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	var req partnerapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete deletes a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	if err := h.customers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate marks a customer as active
func (h *CustomerHandler) Activate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customers.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Deactivate marks a customer as inactive
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customers.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}
