package handler

import (
	"github.com/gin-gonic/gin"

	invoicingapp "github.com/florexport/backend/internal/application/invoicing"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// RegisterRoutes registers invoice routes on the given group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.GET("/number/:number", h.GetByNumber)
		invoices.PUT("/:id/items", h.UpdateItems)
		invoices.DELETE("/:id", h.Delete)
		invoices.POST("/refresh-overdue", h.RefreshOverdue)
	}
}

// Create creates a new invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoicingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inv, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// List lists invoices with filtering and pagination
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter invoicingapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get retrieves an invoice by ID with its derived financial figures
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// GetByNumber retrieves an invoice by its invoice number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	inv, err := h.invoices.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// UpdateItems replaces the line items of an unpaid invoice
func (h *InvoiceHandler) UpdateItems(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req invoicingapp.UpdateInvoiceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inv, err := h.invoices.UpdateItems(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Delete deletes an invoice without recorded payments
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RefreshOverdue flips pending invoices past their due date to overdue
func (h *InvoiceHandler) RefreshOverdue(c *gin.Context) {
	count, err := h.invoices.RefreshOverdueStatuses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": count})
}
