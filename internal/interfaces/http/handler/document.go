package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/florexport/backend/internal/application/delivery"
)

// DocumentHandler handles invoice PDF download and email endpoints
type DocumentHandler struct {
	BaseHandler
	documents *delivery.DeliveryService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents *delivery.DeliveryService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// RegisterRoutes registers document routes on the given group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/invoices/:id/pdf", h.InvoicePDF)
	rg.POST("/invoices/:id/email", h.EmailInvoice)
}

// InvoicePDF renders the invoice as a downloadable PDF
func (h *DocumentHandler) InvoicePDF(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	result, err := h.documents.InvoicePDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.File(c, result.FileName, result.ContentType, result.Data)
}

// EmailInvoice renders the invoice PDF and mails it to the customer contact
func (h *DocumentHandler) EmailInvoice(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	result, err := h.documents.EmailInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
