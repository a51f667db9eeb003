// Package export renders invoices and statements into downloadable documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/florexport/backend/internal/application/delivery"
	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/jung-kurt/gofpdf"
)

// InvoicePDFRenderer renders invoice documents with gofpdf
type InvoicePDFRenderer struct {
	companyName string
}

// NewInvoicePDFRenderer creates a new InvoicePDFRenderer. The company name
// appears in the document header.
func NewInvoicePDFRenderer(companyName string) *InvoicePDFRenderer {
	if companyName == "" {
		companyName = "Flower Export"
	}
	return &InvoicePDFRenderer{companyName: companyName}
}

// RenderInvoice renders the invoice document as PDF bytes
func (r *InvoicePDFRenderer) RenderInvoice(doc delivery.InvoiceDocument) ([]byte, error) {
	inv := doc.Invoice

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(120, 10, r.companyName)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "INVOICE "+inv.InvoiceNumber, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// Parties and shipment details
	pdf.SetFont("Arial", "", 10)
	if doc.CustomerName != "" {
		r.labelledRow(pdf, "Bill to:", doc.CustomerName)
	}
	if doc.FarmName != "" {
		r.labelledRow(pdf, "Grower:", doc.FarmName)
	}
	r.labelledRow(pdf, "Flight date:", inv.FlightDate.Format("2006-01-02"))
	r.labelledRow(pdf, "Due date:", inv.DueDate.Format("2006-01-02"))
	if inv.AWB != "" {
		r.labelledRow(pdf, "AWB:", inv.AWB)
	}
	r.labelledRow(pdf, "Status:", inv.Status)
	pdf.Ln(6)

	// Line items
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(50, 7, "Variety", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Boxes", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 7, "Bunches", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Stems/bunch", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 7, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	invoiceType := invoicing.InvoiceType(inv.Type)
	for _, item := range inv.Items {
		for i, b := range item.Bunches {
			variety := ""
			boxes := ""
			if i == 0 {
				variety = item.Variety
				boxes = fmt.Sprintf("%d", item.BoxCount)
			}
			price := b.SalePrice
			if invoiceType == invoicing.InvoiceTypePurchase {
				price = b.PurchasePrice
			}
			pdf.CellFormat(50, 6, variety, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, boxes, "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%d", b.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", b.StemsPerBunch), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, price.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, b.Amount(invoiceType).StringFixed(2), "1", 1, "R", false, 0, "")
		}
	}
	pdf.Ln(4)

	// Totals
	r.totalRow(pdf, "Subtotal", inv.Subtotal.StringFixed(2), false)
	if !inv.CreditsTotal.IsZero() {
		r.totalRow(pdf, "Credit notes", "-"+inv.CreditsTotal.StringFixed(2), false)
	}
	if !inv.DebitsTotal.IsZero() {
		r.totalRow(pdf, "Debit notes", inv.DebitsTotal.StringFixed(2), false)
	}
	r.totalRow(pdf, "Total charge", inv.Charge.StringFixed(2), true)
	r.totalRow(pdf, "Paid", inv.PaymentsTotal.StringFixed(2), false)
	r.totalRow(pdf, "Balance due", inv.Balance.StringFixed(2), true)

	if inv.Remark != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, "Remark: "+inv.Remark, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *InvoicePDFRenderer) labelledRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 6, label)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (r *InvoicePDFRenderer) totalRow(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Arial", style, 10)
	pdf.Cell(130, 6, "")
	pdf.Cell(30, 6, label)
	pdf.CellFormat(0, 6, value, "", 1, "R", false, 0, "")
}

// Ensure InvoicePDFRenderer implements the delivery interface
var _ delivery.InvoicePDFRenderer = (*InvoicePDFRenderer)(nil)
