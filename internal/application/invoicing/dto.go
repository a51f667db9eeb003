package invoicing

import (
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Invoice DTOs
// =============================================================================

// BunchRequest represents one priced bundle of stems in a request
type BunchRequest struct {
	Quantity      int             `json:"quantity" binding:"required,min=1"`
	StemsPerBunch int             `json:"stems_per_bunch" binding:"min=0"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// InvoiceItemRequest represents one flower line in a request
type InvoiceItemRequest struct {
	Variety  string         `json:"variety" binding:"required,min=1,max=200"`
	BoxCount int            `json:"box_count" binding:"min=0"`
	Bunches  []BunchRequest `json:"bunches" binding:"required,min=1,dive"`
}

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	Type       string               `json:"type" binding:"required,oneof=SALE PURCHASE BOTH"`
	CustomerID *uuid.UUID           `json:"customer_id"`
	FarmID     *uuid.UUID           `json:"farm_id"`
	AWB        string               `json:"awb" binding:"omitempty,awb"`
	FlightDate time.Time            `json:"flight_date" binding:"required"`
	Items      []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Remark     string               `json:"remark"`
}

// UpdateInvoiceItemsRequest replaces the line items of an unpaid invoice
type UpdateInvoiceItemsRequest struct {
	Items []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// InvoiceResponse represents an invoice in API responses, with the derived
// financial figures alongside the stored fields
type InvoiceResponse struct {
	ID            uuid.UUID               `json:"id"`
	InvoiceNumber string                  `json:"invoice_number"`
	Type          string                  `json:"type"`
	CustomerID    *uuid.UUID              `json:"customer_id,omitempty"`
	FarmID        *uuid.UUID              `json:"farm_id,omitempty"`
	AWB           string                  `json:"awb"`
	FlightDate    time.Time               `json:"flight_date"`
	DueDate       time.Time               `json:"due_date"`
	Items         []invoicing.InvoiceItem `json:"items"`
	Status        string                  `json:"status"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
	CreditsTotal  decimal.Decimal         `json:"credits_total"`
	DebitsTotal   decimal.Decimal         `json:"debits_total"`
	Charge        decimal.Decimal         `json:"charge"`
	PaymentsTotal decimal.Decimal         `json:"payments_total"`
	Balance       decimal.Decimal         `json:"balance"`
	DaysOverdue   int                     `json:"days_overdue"`
	Remark        string                  `json:"remark"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	Version       int                     `json:"version"`
}

// InvoiceListFilter represents filter options for invoice lists
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	Type       string     `form:"type" binding:"omitempty,oneof=SALE PURCHASE BOTH"`
	Status     string     `form:"status" binding:"omitempty,oneof=PENDING OVERDUE PAID"`
	CustomerID *uuid.UUID `form:"customer_id"`
	FarmID     *uuid.UUID `form:"farm_id"`
	FlightFrom *time.Time `form:"flight_from" time_format:"2006-01-02"`
	FlightTo   *time.Time `form:"flight_to" time_format:"2006-01-02"`
	Page       int        `form:"page,default=1" binding:"min=1"`
	PageSize   int        `form:"page_size,default=20" binding:"min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Payment DTOs
// =============================================================================

// ApplyPaymentRequest records one payment against one invoice
type ApplyPaymentRequest struct {
	InvoiceID   uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE OTHER"`
	Reference   string          `json:"reference" binding:"max=100"`
	Notes       string          `json:"notes"`
}

// BulkPaymentRequest distributes one received amount across a customer's or
// farm's outstanding invoices, oldest flight first
type BulkPaymentRequest struct {
	CustomerID     *uuid.UUID      `json:"customer_id"`
	FarmID         *uuid.UUID      `json:"farm_id"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate    time.Time       `json:"payment_date"`
	Method         string          `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE OTHER"`
	Reference      string          `json:"reference" binding:"max=100"`
	Notes          string          `json:"notes"`
	IdempotencyKey string          `json:"idempotency_key" binding:"max=100"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        string          `json:"method"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
	BulkID        *uuid.UUID      `json:"bulk_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ApplyPaymentResult is the outcome of recording a single payment
type ApplyPaymentResult struct {
	Payment    PaymentResponse `json:"payment"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Status     string          `json:"status"`
}

// BulkAllocationResponse is one slice of a bulk payment
type BulkAllocationResponse struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Applied       decimal.Decimal `json:"applied"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	Status        string          `json:"status"`
}

// BulkPaymentResult is the outcome of a bulk payment allocation
type BulkPaymentResult struct {
	BulkID          uuid.UUID                `json:"bulk_id"`
	Allocations     []BulkAllocationResponse `json:"allocations"`
	TotalApplied    decimal.Decimal          `json:"total_applied"`
	UnappliedAmount decimal.Decimal          `json:"unapplied_amount"`
}

// =============================================================================
// Credit / Debit Note DTOs
// =============================================================================

// CreateNoteRequest issues a credit or debit note against an invoice
type CreateNoteRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason" binding:"required,min=1,max=500"`
}

// NoteResponse represents a credit or debit note in API responses
type NoteResponse struct {
	ID         uuid.UUID       `json:"id"`
	NoteNumber string          `json:"note_number"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	CreatedAt  time.Time       `json:"created_at"`
}

// =============================================================================
// Mappers
// =============================================================================

func toInvoiceItems(reqs []InvoiceItemRequest) []invoicing.InvoiceItem {
	items := make([]invoicing.InvoiceItem, 0, len(reqs))
	for _, r := range reqs {
		bunches := make([]invoicing.Bunch, 0, len(r.Bunches))
		for _, b := range r.Bunches {
			bunches = append(bunches, invoicing.Bunch{
				Quantity:      b.Quantity,
				StemsPerBunch: b.StemsPerBunch,
				SalePrice:     b.SalePrice,
				PurchasePrice: b.PurchasePrice,
			})
		}
		items = append(items, invoicing.InvoiceItem{
			Variety:  r.Variety,
			BoxCount: r.BoxCount,
			Bunches:  bunches,
		})
	}
	return items
}

func toPaymentResponse(p *invoicing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		Method:        p.Method.String(),
		Reference:     p.Reference,
		Notes:         p.Notes,
		BulkID:        p.BulkID,
		CreatedAt:     p.CreatedAt,
	}
}

func toNoteResponse(id uuid.UUID, noteNumber string, invoiceID uuid.UUID, amount decimal.Decimal, reason string, createdAt time.Time) NoteResponse {
	return NoteResponse{
		ID:         id,
		NoteNumber: noteNumber,
		InvoiceID:  invoiceID,
		Amount:     amount,
		Reason:     reason,
		CreatedAt:  createdAt,
	}
}
