package handler

import (
	"github.com/gin-gonic/gin"

	invoicingapp "github.com/florexport/backend/internal/application/invoicing"
)

// NoteHandler handles credit and debit note API endpoints
type NoteHandler struct {
	BaseHandler
	notes *invoicingapp.NoteService
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(notes *invoicingapp.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// RegisterRoutes registers note routes on the given group
func (h *NoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/credit-notes", h.CreateCreditNote)
	rg.DELETE("/credit-notes/:id", h.DeleteCreditNote)
	rg.POST("/debit-notes", h.CreateDebitNote)
	rg.DELETE("/debit-notes/:id", h.DeleteDebitNote)
	rg.GET("/invoices/:id/notes", h.ListByInvoice)
}

// CreateCreditNote issues a credit note, reducing the invoice charge
func (h *NoteHandler) CreateCreditNote(c *gin.Context) {
	var req invoicingapp.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.notes.CreateCreditNote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, note)
}

// CreateDebitNote issues a debit note, increasing the invoice charge
func (h *NoteHandler) CreateDebitNote(c *gin.Context) {
	var req invoicingapp.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	note, err := h.notes.CreateDebitNote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, note)
}

// DeleteCreditNote withdraws a credit note
func (h *NoteHandler) DeleteCreditNote(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid note ID")
		return
	}

	if err := h.notes.DeleteCreditNote(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteDebitNote withdraws a debit note
func (h *NoteHandler) DeleteDebitNote(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid note ID")
		return
	}

	if err := h.notes.DeleteDebitNote(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListByInvoice lists the credit and debit notes of an invoice
func (h *NoteHandler) ListByInvoice(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	credits, debits, err := h.notes.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"credit_notes": credits,
		"debit_notes":  debits,
	})
}
