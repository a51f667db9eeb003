package invoicing

import (
	"context"
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*invoicing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByFarm(ctx context.Context, farmID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, farmID, filter)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter invoicing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]invoicing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByBulkID(ctx context.Context, bulkID uuid.UUID) ([]invoicing.Payment, error) {
	args := m.Called(ctx, bulkID)
	return args.Get(0).([]invoicing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *invoicing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) ExistsByInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.CreditNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.CreditNote, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]invoicing.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, note *invoicing.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) GenerateNoteNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockDebitNoteRepository struct {
	mock.Mock
}

func (m *MockDebitNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.DebitNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.DebitNote), args.Error(1)
}

func (m *MockDebitNoteRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.DebitNote, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]invoicing.DebitNote), args.Error(1)
}

func (m *MockDebitNoteRepository) Save(ctx context.Context, note *invoicing.DebitNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockDebitNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDebitNoteRepository) GenerateNoteNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// recordingUnitOfWork runs the function inline and counts how each
// transaction ended, so tests can assert that a failed operation was rolled
// back as one unit.
type recordingUnitOfWork struct {
	begun      int
	committed  int
	rolledBack int
}

func (u *recordingUnitOfWork) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	u.begun++
	if err := fn(ctx); err != nil {
		u.rolledBack++
		return err
	}
	u.committed++
	return nil
}
