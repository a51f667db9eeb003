package invoicing

import (
	"context"
	"time"

	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	Type       *InvoiceType   // Filter by invoice type
	Status     *InvoiceStatus // Filter by status
	CustomerID *uuid.UUID     // Filter by customer
	FarmID     *uuid.UUID     // Filter by farm
	FlightFrom *time.Time     // Filter by flight date range start
	FlightTo   *time.Time     // Filter by flight date range end
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds an invoice by its number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAll finds invoices with filtering
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// FindByCustomer finds invoices for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindByFarm finds invoices for a farm
	FindByFarm(ctx context.Context, farmID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Delete soft deletes an invoice
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// ExistsByInvoiceNumber checks if an invoice number is taken
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)

	// GenerateInvoiceNumber generates a unique invoice number
	GenerateInvoiceNumber(ctx context.Context) (string, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByInvoice finds all payments recorded against an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)

	// FindByBulkID finds all payments recorded by one bulk allocation
	FindByBulkID(ctx context.Context, bulkID uuid.UUID) ([]Payment, error)

	// Save creates a payment record
	Save(ctx context.Context, payment *Payment) error

	// Delete removes a payment record
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByInvoice reports whether any payment references the invoice
	ExistsByInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error)

	// GeneratePaymentNumber generates a unique payment number
	GeneratePaymentNumber(ctx context.Context) (string, error)
}

// CreditNoteRepository defines the interface for credit note persistence
type CreditNoteRepository interface {
	// FindByID finds a credit note by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)

	// FindByInvoice finds all credit notes referencing an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]CreditNote, error)

	// Save creates a credit note
	Save(ctx context.Context, note *CreditNote) error

	// Delete removes a credit note
	Delete(ctx context.Context, id uuid.UUID) error

	// GenerateNoteNumber generates a unique credit note number
	GenerateNoteNumber(ctx context.Context) (string, error)
}

// DebitNoteRepository defines the interface for debit note persistence
type DebitNoteRepository interface {
	// FindByID finds a debit note by ID
	FindByID(ctx context.Context, id uuid.UUID) (*DebitNote, error)

	// FindByInvoice finds all debit notes referencing an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]DebitNote, error)

	// Save creates a debit note
	Save(ctx context.Context, note *DebitNote) error

	// Delete removes a debit note
	Delete(ctx context.Context, id uuid.UUID) error

	// GenerateNoteNumber generates a unique debit note number
	GenerateNoteNumber(ctx context.Context) (string, error)
}
