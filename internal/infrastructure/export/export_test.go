package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/florexport/backend/internal/application/delivery"
	appinvoicing "github.com/florexport/backend/internal/application/invoicing"
	"github.com/florexport/backend/internal/application/report"
	"github.com/florexport/backend/internal/domain/invoicing"
)

func testInvoiceDocument() delivery.InvoiceDocument {
	customerID := uuid.New()
	flightDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return delivery.InvoiceDocument{
		Invoice: appinvoicing.InvoiceResponse{
			ID:            uuid.New(),
			InvoiceNumber: "INV-20260310-00042",
			Type:          string(invoicing.InvoiceTypeSale),
			CustomerID:    &customerID,
			AWB:           "729-12345675",
			FlightDate:    flightDate,
			DueDate:       flightDate.AddDate(0, 0, 30),
			Items: []invoicing.InvoiceItem{
				{
					Variety:  "Freedom",
					BoxCount: 4,
					Bunches: []invoicing.Bunch{
						{Quantity: 100, StemsPerBunch: 25, SalePrice: decimal.RequireFromString("0.45")},
						{Quantity: 50, StemsPerBunch: 20, SalePrice: decimal.RequireFromString("0.40")},
					},
				},
				{
					Variety:  "Explorer",
					BoxCount: 2,
					Bunches: []invoicing.Bunch{
						{Quantity: 60, StemsPerBunch: 25, SalePrice: decimal.RequireFromString("0.55")},
					},
				},
			},
			Status:        string(invoicing.InvoiceStatusPending),
			Subtotal:      decimal.RequireFromString("98.00"),
			CreditsTotal:  decimal.RequireFromString("5.00"),
			DebitsTotal:   decimal.Zero,
			Charge:        decimal.RequireFromString("93.00"),
			PaymentsTotal: decimal.RequireFromString("50.00"),
			Balance:       decimal.RequireFromString("43.00"),
			Remark:        "Partial shipment, remainder on next flight",
		},
		CustomerName: "Rosas del Valle",
		FarmName:     "Finca La Esperanza",
	}
}

func TestInvoicePDFRenderer_RenderInvoice(t *testing.T) {
	renderer := NewInvoicePDFRenderer("Florexport Cargo S.A.")

	data, err := renderer.RenderInvoice(testInvoiceDocument())

	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output should be a PDF document")
}

func TestInvoicePDFRenderer_RenderInvoice_NoItems(t *testing.T) {
	renderer := NewInvoicePDFRenderer("")
	doc := testInvoiceDocument()
	doc.Invoice.Items = nil
	doc.FarmName = ""

	data, err := renderer.RenderInvoice(doc)

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestStatementExcelRenderer_RenderStatement(t *testing.T) {
	renderer := NewStatementExcelRenderer()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stmt := &report.StatementResponse{
		CustomerID:   uuid.New(),
		CustomerName: "Rosas del Valle",
		FromDate:     &from,
		GeneratedAt:  time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
		Lines: []report.StatementLine{
			{
				InvoiceID:      uuid.New(),
				InvoiceNumber:  "INV-20260310-00042",
				FlightDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
				DueDate:        time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC),
				AWB:            "729-12345675",
				Status:         "PARTIAL",
				Charge:         decimal.RequireFromString("93.00"),
				Paid:           decimal.RequireFromString("50.00"),
				Balance:        decimal.RequireFromString("43.00"),
				RunningBalance: decimal.RequireFromString("43.00"),
			},
			{
				InvoiceID:      uuid.New(),
				InvoiceNumber:  "INV-20260315-00007",
				FlightDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
				DueDate:        time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC),
				Status:         "PENDING",
				Charge:         decimal.RequireFromString("120.00"),
				Paid:           decimal.Zero,
				Balance:        decimal.RequireFromString("120.00"),
				RunningBalance: decimal.RequireFromString("163.00"),
			},
		},
		TotalCharge:  decimal.RequireFromString("213.00"),
		TotalPaid:    decimal.RequireFromString("50.00"),
		TotalBalance: decimal.RequireFromString("163.00"),
	}

	data, err := renderer.RenderStatement(stmt)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// Parse the workbook back and verify the content landed where expected
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Statement"}, f.GetSheetList())

	name, err := f.GetCellValue(statementSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Rosas del Valle", name)

	firstInvoice, err := f.GetCellValue(statementSheet, "A6")
	require.NoError(t, err)
	assert.Equal(t, "INV-20260310-00042", firstInvoice)

	running, err := f.GetCellValue(statementSheet, "I7")
	require.NoError(t, err)
	assert.Equal(t, "163", running)
}

func TestStatementExcelRenderer_RenderStatement_Empty(t *testing.T) {
	renderer := NewStatementExcelRenderer()
	stmt := &report.StatementResponse{
		CustomerID:   uuid.New(),
		CustomerName: "Rosas del Valle",
		GeneratedAt:  time.Now(),
		TotalCharge:  decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalBalance: decimal.Zero,
	}

	data, err := renderer.RenderStatement(stmt)

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
