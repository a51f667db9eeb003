package invoicing

import (
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNote reduces the amount owed on an invoice (short shipment, quality
// claim, price adjustment). Immutable once issued: create and delete only.
type CreditNote struct {
	shared.BaseAggregateRoot
	NoteNumber string          `json:"note_number"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// NewCreditNote creates a new credit note against an invoice
func NewCreditNote(noteNumber string, invoiceID uuid.UUID, amount valueobject.Money, reason string) (*CreditNote, error) {
	if noteNumber == "" {
		return nil, shared.NewDomainError("INVALID_NOTE_NUMBER", "Note number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit note amount must be positive")
	}

	n := &CreditNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		NoteNumber:        noteNumber,
		InvoiceID:         invoiceID,
		Amount:            amount.Amount(),
		Reason:            reason,
	}

	n.AddDomainEvent(NewCreditNoteIssuedEvent(n))

	return n, nil
}

// GetAmountMoney returns the amount as Money value object
func (n *CreditNote) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(n.Amount)
}

// SumCreditNotes returns the total of the given credit notes
func SumCreditNotes(notes []CreditNote) decimal.Decimal {
	total := decimal.Zero
	for _, n := range notes {
		total = total.Add(n.Amount)
	}
	return total
}
