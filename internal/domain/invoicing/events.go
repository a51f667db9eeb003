package invoicing

import (
	"time"

	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceType   InvoiceType     `json:"invoice_type"`
	FlightDate    time.Time       `json:"flight_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceType:     inv.Type,
		FlightDate:      inv.FlightDate,
		Subtotal:        inv.Subtotal(),
	}
}

// InvoiceStatusChangedEvent is raised when a payment or note changes the
// derived invoice status
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID     `json:"invoice_id"`
	InvoiceNumber  string        `json:"invoice_number"`
	PreviousStatus InvoiceStatus `json:"previous_status"`
	NewStatus      InvoiceStatus `json:"new_status"`
}

// EventType returns the event type name
func (e *InvoiceStatusChangedEvent) EventType() string {
	return "InvoiceStatusChanged"
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, previous InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceStatusChanged", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PreviousStatus:  previous,
		NewStatus:       inv.Status,
	}
}

// PaymentRecordedEvent is raised when a payment is recorded against an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		Method:          p.Method,
		PaymentDate:     p.PaymentDate,
	}
}

// CreditNoteIssuedEvent is raised when a credit note is issued
type CreditNoteIssuedEvent struct {
	shared.BaseDomainEvent
	NoteID     uuid.UUID       `json:"note_id"`
	NoteNumber string          `json:"note_number"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *CreditNoteIssuedEvent) EventType() string {
	return "CreditNoteIssued"
}

// NewCreditNoteIssuedEvent creates a new CreditNoteIssuedEvent
func NewCreditNoteIssuedEvent(n *CreditNote) *CreditNoteIssuedEvent {
	return &CreditNoteIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditNoteIssued", "CreditNote", n.ID),
		NoteID:          n.ID,
		NoteNumber:      n.NoteNumber,
		InvoiceID:       n.InvoiceID,
		Amount:          n.Amount,
	}
}

// DebitNoteIssuedEvent is raised when a debit note is issued
type DebitNoteIssuedEvent struct {
	shared.BaseDomainEvent
	NoteID     uuid.UUID       `json:"note_id"`
	NoteNumber string          `json:"note_number"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *DebitNoteIssuedEvent) EventType() string {
	return "DebitNoteIssued"
}

// NewDebitNoteIssuedEvent creates a new DebitNoteIssuedEvent
func NewDebitNoteIssuedEvent(n *DebitNote) *DebitNoteIssuedEvent {
	return &DebitNoteIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DebitNoteIssued", "DebitNote", n.ID),
		NoteID:          n.ID,
		NoteNumber:      n.NoteNumber,
		InvoiceID:       n.InvoiceID,
		Amount:          n.Amount,
	}
}
