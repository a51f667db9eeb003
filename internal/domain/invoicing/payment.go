package invoicing

import (
	"time"

	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment represents money applied to a single invoice.
// Payments are immutable once created: they are only ever added or deleted,
// never updated.
type Payment struct {
	shared.BaseAggregateRoot
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        PaymentMethod   `json:"method"`
	Reference     string          `json:"reference"` // Bank slip / cheque number
	Notes         string          `json:"notes"`
	BulkID        *uuid.UUID      `json:"bulk_id"` // Set when recorded by a bulk allocation
}

// NewPayment creates a new payment record against an invoice
func NewPayment(
	paymentNumber string,
	invoiceID uuid.UUID,
	amount valueobject.Money,
	paymentDate time.Time,
	method PaymentMethod,
	reference string,
	notes string,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentNumber:     paymentNumber,
		InvoiceID:         invoiceID,
		Amount:            amount.Amount(),
		PaymentDate:       paymentDate,
		Method:            method,
		Reference:         reference,
		Notes:             notes,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// WithBulkID tags the payment as part of a bulk allocation
func (p *Payment) WithBulkID(bulkID uuid.UUID) *Payment {
	p.BulkID = &bulkID
	return p
}

// GetAmountMoney returns the amount as Money value object
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}

// SumPayments returns the total of the given payments
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
