package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementLine is one invoice row on a customer statement
type StatementLine struct {
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	FlightDate     time.Time       `json:"flight_date"`
	DueDate        time.Time       `json:"due_date"`
	AWB            string          `json:"awb"`
	Status         string          `json:"status"`
	Charge         decimal.Decimal `json:"charge"`
	Paid           decimal.Decimal `json:"paid"`
	Balance        decimal.Decimal `json:"balance"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// StatementResponse is a customer account statement over a date range
type StatementResponse struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	FromDate     *time.Time      `json:"from_date,omitempty"`
	ToDate       *time.Time      `json:"to_date,omitempty"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Lines        []StatementLine `json:"lines"`
	TotalCharge  decimal.Decimal `json:"total_charge"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// StatementFilter bounds a statement by flight date
type StatementFilter struct {
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// AgingBucket is one column of the aging report
type AgingBucket string

const (
	AgingCurrent    AgingBucket = "current"
	AgingDays1To30  AgingBucket = "1-30"
	AgingDays31To60 AgingBucket = "31-60"
	AgingDays61To90 AgingBucket = "61-90"
	AgingOver90     AgingBucket = "90+"
)

// AgingRow is the bucketed outstanding balance of one customer
type AgingRow struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Current      decimal.Decimal `json:"current"`
	Days1To30    decimal.Decimal `json:"days_1_30"`
	Days31To60   decimal.Decimal `json:"days_31_60"`
	Days61To90   decimal.Decimal `json:"days_61_90"`
	Over90       decimal.Decimal `json:"over_90"`
	Total        decimal.Decimal `json:"total"`
}

// AgingReportResponse buckets all outstanding receivables by days past due
type AgingReportResponse struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Rows        []AgingRow      `json:"rows"`
	Total       decimal.Decimal `json:"total"`
}
