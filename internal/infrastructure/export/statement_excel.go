package export

import (
	"fmt"

	"github.com/florexport/backend/internal/application/delivery"
	"github.com/florexport/backend/internal/application/report"
	"github.com/xuri/excelize/v2"
)

const statementSheet = "Statement"

// StatementExcelRenderer renders customer statements as xlsx workbooks
type StatementExcelRenderer struct{}

// NewStatementExcelRenderer creates a new StatementExcelRenderer
func NewStatementExcelRenderer() *StatementExcelRenderer {
	return &StatementExcelRenderer{}
}

// RenderStatement renders the statement as xlsx bytes. One row per invoice,
// running balance in the last column, totals at the bottom.
func (r *StatementExcelRenderer) RenderStatement(stmt *report.StatementResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(statementSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create bold style: %w", err)
	}

	f.SetCellValue(statementSheet, "A1", "Account Statement")
	f.SetCellValue(statementSheet, "A2", stmt.CustomerName)
	f.SetCellValue(statementSheet, "A3", "Generated: "+stmt.GeneratedAt.Format("2006-01-02 15:04"))
	if stmt.FromDate != nil {
		f.SetCellValue(statementSheet, "C3", "From: "+stmt.FromDate.Format("2006-01-02"))
	}
	if stmt.ToDate != nil {
		f.SetCellValue(statementSheet, "D3", "To: "+stmt.ToDate.Format("2006-01-02"))
	}
	f.SetCellStyle(statementSheet, "A1", "A1", boldStyle)

	headers := []string{"Invoice", "Flight Date", "Due Date", "AWB", "Status", "Charge", "Paid", "Balance", "Running Balance"}
	headerRow := 5
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(statementSheet, cell, h)
		f.SetCellStyle(statementSheet, cell, cell, headerStyle)
	}

	row := headerRow + 1
	for _, line := range stmt.Lines {
		values := []interface{}{
			line.InvoiceNumber,
			line.FlightDate.Format("2006-01-02"),
			line.DueDate.Format("2006-01-02"),
			line.AWB,
			line.Status,
			line.Charge.InexactFloat64(),
			line.Paid.InexactFloat64(),
			line.Balance.InexactFloat64(),
			line.RunningBalance.InexactFloat64(),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(statementSheet, cell, v)
		}
		row++
	}

	row++
	f.SetCellValue(statementSheet, fmt.Sprintf("E%d", row), "Totals")
	f.SetCellValue(statementSheet, fmt.Sprintf("F%d", row), stmt.TotalCharge.InexactFloat64())
	f.SetCellValue(statementSheet, fmt.Sprintf("G%d", row), stmt.TotalPaid.InexactFloat64())
	f.SetCellValue(statementSheet, fmt.Sprintf("H%d", row), stmt.TotalBalance.InexactFloat64())
	f.SetCellStyle(statementSheet, fmt.Sprintf("E%d", row), fmt.Sprintf("H%d", row), boldStyle)

	f.SetColWidth(statementSheet, "A", "A", 22)
	f.SetColWidth(statementSheet, "B", "E", 14)
	f.SetColWidth(statementSheet, "F", "I", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var _ delivery.StatementExcelRenderer = (*StatementExcelRenderer)(nil)
