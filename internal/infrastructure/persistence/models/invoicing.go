package models

import (
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Monetary figures are never stored on the row; they are derived from the
// payment and note tables on read.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type          invoicing.InvoiceType   `gorm:"type:varchar(20);not null;index"`
	CustomerID    *uuid.UUID              `gorm:"type:uuid;index"`
	FarmID        *uuid.UUID              `gorm:"type:uuid;index"`
	AWB           string                  `gorm:"type:varchar(50);index"`
	FlightDate    time.Time               `gorm:"not null;index"`
	Items         invoicing.InvoiceItems  `gorm:"type:jsonb;default:'[]'"`
	Status        invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Remark        string                  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	return &invoicing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		InvoiceNumber: m.InvoiceNumber,
		Type:          m.Type,
		CustomerID:    m.CustomerID,
		FarmID:        m.FarmID,
		AWB:           m.AWB,
		FlightDate:    m.FlightDate,
		Items:         m.Items,
		Status:        m.Status,
		Remark:        m.Remark,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.Type = inv.Type
	m.CustomerID = inv.CustomerID
	m.FarmID = inv.FarmID
	m.AWB = inv.AWB
	m.FlightDate = inv.FlightDate
	m.Items = inv.Items
	m.Status = inv.Status
	m.Remark = inv.Remark
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	AggregateModel
	PaymentNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	InvoiceID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PaymentDate   time.Time               `gorm:"not null;index"`
	Method        invoicing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference     string                  `gorm:"type:varchar(100)"`
	Notes         string                  `gorm:"type:text"`
	BulkID        *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *invoicing.Payment {
	return &invoicing.Payment{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		PaymentNumber: m.PaymentNumber,
		InvoiceID:     m.InvoiceID,
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		Method:        m.Method,
		Reference:     m.Reference,
		Notes:         m.Notes,
		BulkID:        m.BulkID,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *invoicing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.InvoiceID = p.InvoiceID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.Reference = p.Reference
	m.Notes = p.Notes
	m.BulkID = p.BulkID
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *invoicing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// CreditNoteModel is the persistence model for the CreditNote aggregate root.
type CreditNoteModel struct {
	AggregateModel
	NoteNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason     string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// ToDomain converts the persistence model to a domain CreditNote entity.
func (m *CreditNoteModel) ToDomain() *invoicing.CreditNote {
	return &invoicing.CreditNote{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		NoteNumber: m.NoteNumber,
		InvoiceID:  m.InvoiceID,
		Amount:     m.Amount,
		Reason:     m.Reason,
	}
}

// FromDomain populates the persistence model from a domain CreditNote entity.
func (m *CreditNoteModel) FromDomain(n *invoicing.CreditNote) {
	m.FromDomainAggregateRoot(n.BaseAggregateRoot)
	m.NoteNumber = n.NoteNumber
	m.InvoiceID = n.InvoiceID
	m.Amount = n.Amount
	m.Reason = n.Reason
}

// CreditNoteModelFromDomain creates a new persistence model from a domain CreditNote.
func CreditNoteModelFromDomain(n *invoicing.CreditNote) *CreditNoteModel {
	m := &CreditNoteModel{}
	m.FromDomain(n)
	return m
}

// DebitNoteModel is the persistence model for the DebitNote aggregate root.
type DebitNoteModel struct {
	AggregateModel
	NoteNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason     string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DebitNoteModel) TableName() string {
	return "debit_notes"
}

// ToDomain converts the persistence model to a domain DebitNote entity.
func (m *DebitNoteModel) ToDomain() *invoicing.DebitNote {
	return &invoicing.DebitNote{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		NoteNumber: m.NoteNumber,
		InvoiceID:  m.InvoiceID,
		Amount:     m.Amount,
		Reason:     m.Reason,
	}
}

// FromDomain populates the persistence model from a domain DebitNote entity.
func (m *DebitNoteModel) FromDomain(n *invoicing.DebitNote) {
	m.FromDomainAggregateRoot(n.BaseAggregateRoot)
	m.NoteNumber = n.NoteNumber
	m.InvoiceID = n.InvoiceID
	m.Amount = n.Amount
	m.Reason = n.Reason
}

// DebitNoteModelFromDomain creates a new persistence model from a domain DebitNote.
func DebitNoteModelFromDomain(n *invoicing.DebitNote) *DebitNoteModel {
	m := &DebitNoteModel{}
	m.FromDomain(n)
	return m
}
