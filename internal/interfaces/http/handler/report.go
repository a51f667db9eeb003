package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/florexport/backend/internal/application/delivery"
	"github.com/florexport/backend/internal/application/report"
)

// ReportHandler handles statement and aging report API endpoints
type ReportHandler struct {
	BaseHandler
	statements *report.StatementService
	documents  *delivery.DeliveryService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(statements *report.StatementService, documents *delivery.DeliveryService) *ReportHandler {
	return &ReportHandler{statements: statements, documents: documents}
}

// RegisterRoutes registers report routes on the given group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/customers/:id/statement", h.CustomerStatement)
	rg.GET("/reports/aging", h.AgingReport)
}

// CustomerStatement returns a customer account statement. With ?format=xlsx
// the statement is returned as a downloadable workbook.
func (h *ReportHandler) CustomerStatement(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	var filter report.StatementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if c.Query("format") == "xlsx" {
		result, err := h.documents.CustomerStatementExcel(c.Request.Context(), id, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.File(c, result.FileName, result.ContentType, result.Data)
		return
	}

	stmt, err := h.statements.CustomerStatement(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stmt)
}

// AgingReport buckets outstanding receivables by days past due
func (h *ReportHandler) AgingReport(c *gin.Context) {
	aging, err := h.statements.AgingReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, aging)
}
