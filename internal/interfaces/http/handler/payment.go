package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invoicingapp "github.com/florexport/backend/internal/application/invoicing"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	payments *invoicingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *invoicingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RegisterRoutes registers payment routes on the given group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Apply)
		payments.POST("/bulk", h.ApplyBulk)
		payments.GET("/bulk/:bulk_id", h.ListByBulkID)
		payments.DELETE("/:id", h.Delete)
	}
	rg.GET("/invoices/:id/payments", h.ListByInvoice)
}

// Apply records a payment against a single invoice
func (h *PaymentHandler) Apply(c *gin.Context) {
	var req invoicingapp.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.payments.Apply(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ApplyBulk distributes one received amount across outstanding invoices,
// oldest flight first
func (h *PaymentHandler) ApplyBulk(c *gin.Context) {
	var req invoicingapp.BulkPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.payments.ApplyBulk(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListByInvoice lists the payments recorded against an invoice
func (h *PaymentHandler) ListByInvoice(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.payments.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// ListByBulkID lists the payments created by a bulk distribution
func (h *PaymentHandler) ListByBulkID(c *gin.Context) {
	bulkID, err := uuid.Parse(c.Param("bulk_id"))
	if err != nil {
		h.BadRequest(c, "Invalid bulk ID")
		return
	}

	payments, err := h.payments.ListByBulkID(c.Request.Context(), bulkID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Delete reverses a payment and re-derives the invoice status
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.payments.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
