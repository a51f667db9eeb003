package invoicing

import (
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebitNote increases the amount owed on an invoice (freight surcharge,
// late fee, under-billing correction). Immutable once issued: create and
// delete only.
type DebitNote struct {
	shared.BaseAggregateRoot
	NoteNumber string          `json:"note_number"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// NewDebitNote creates a new debit note against an invoice
func NewDebitNote(noteNumber string, invoiceID uuid.UUID, amount valueobject.Money, reason string) (*DebitNote, error) {
	if noteNumber == "" {
		return nil, shared.NewDomainError("INVALID_NOTE_NUMBER", "Note number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debit note amount must be positive")
	}

	n := &DebitNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		NoteNumber:        noteNumber,
		InvoiceID:         invoiceID,
		Amount:            amount.Amount(),
		Reason:            reason,
	}

	n.AddDomainEvent(NewDebitNoteIssuedEvent(n))

	return n, nil
}

// GetAmountMoney returns the amount as Money value object
func (n *DebitNote) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(n.Amount)
}

// SumDebitNotes returns the total of the given debit notes
func SumDebitNotes(notes []DebitNote) decimal.Decimal {
	total := decimal.Zero
	for _, n := range notes {
		total = total.Add(n.Amount)
	}
	return total
}
