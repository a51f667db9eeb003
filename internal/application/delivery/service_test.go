package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinvoicing "github.com/florexport/backend/internal/application/invoicing"
	"github.com/florexport/backend/internal/application/report"
	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/partner"
	"github.com/florexport/backend/internal/domain/shared"
)

// =============================================================================
// Mock repositories
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

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type MockFarmRepository struct {
	mock.Mock
}

func (m *MockFarmRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Farm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Farm), args.Error(1)
}

func (m *MockFarmRepository) FindByCode(ctx context.Context, code string) (*partner.Farm, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Farm), args.Error(1)
}

func (m *MockFarmRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Farm, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Farm), args.Error(1)
}

func (m *MockFarmRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Farm, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Farm), args.Error(1)
}

func (m *MockFarmRepository) Save(ctx context.Context, farm *partner.Farm) error {
	args := m.Called(ctx, farm)
	return args.Error(0)
}

func (m *MockFarmRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFarmRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFarmRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// =============================================================================
// Fake renderers, store, and mailer
// =============================================================================

type stubPDFRenderer struct {
	data []byte
	err  error
	last *InvoiceDocument
}

func (r *stubPDFRenderer) RenderInvoice(doc InvoiceDocument) ([]byte, error) {
	r.last = &doc
	return r.data, r.err
}

type stubExcelRenderer struct {
	data []byte
	err  error
}

func (r *stubExcelRenderer) RenderStatement(_ *report.StatementResponse) ([]byte, error) {
	return r.data, r.err
}

type memDocumentStore struct {
	objects map[string][]byte
	putErr  error
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{objects: make(map[string][]byte)}
}

func (s *memDocumentStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = data
	return nil
}

func (s *memDocumentStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return data, nil
}

type stubMailer struct {
	sent []Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// =============================================================================
// Fixtures
// =============================================================================

type deliveryMocks struct {
	invoiceRepo  *MockInvoiceRepository
	paymentRepo  *MockPaymentRepository
	creditRepo   *MockCreditNoteRepository
	debitRepo    *MockDebitNoteRepository
	customerRepo *MockCustomerRepository
	farmRepo     *MockFarmRepository
	pdf          *stubPDFRenderer
	excel        *stubExcelRenderer
	store        *memDocumentStore
	mailer       *stubMailer
}

func newDeliveryService(t *testing.T) (*DeliveryService, *deliveryMocks) {
	t.Helper()
	m := &deliveryMocks{
		invoiceRepo:  new(MockInvoiceRepository),
		paymentRepo:  new(MockPaymentRepository),
		creditRepo:   new(MockCreditNoteRepository),
		debitRepo:    new(MockDebitNoteRepository),
		customerRepo: new(MockCustomerRepository),
		farmRepo:     new(MockFarmRepository),
		pdf:          &stubPDFRenderer{data: []byte("%PDF-1.4 stub")},
		excel:        &stubExcelRenderer{data: []byte("PK stub workbook")},
		store:        newMemDocumentStore(),
		mailer:       &stubMailer{},
	}
	invoices := appinvoicing.NewInvoiceService(m.invoiceRepo, m.paymentRepo, m.creditRepo, m.debitRepo, zap.NewNop())
	statements := report.NewStatementService(m.customerRepo, m.invoiceRepo, m.paymentRepo, m.creditRepo, m.debitRepo)
	svc := NewDeliveryService(invoices, statements, m.customerRepo, m.farmRepo, m.pdf, m.excel, m.store, m.mailer, nil)
	return svc, m
}

func newSaleInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	customerID := uuid.New()
	inv, err := invoicing.NewInvoice(
		"INV-20260310-00042",
		invoicing.InvoiceTypeSale,
		&customerID,
		nil,
		"729-12345675",
		time.Now().AddDate(0, 0, -5),
		[]invoicing.InvoiceItem{
			{
				Variety:  "Freedom",
				BoxCount: 2,
				Bunches: []invoicing.Bunch{
					{Quantity: 100, StemsPerBunch: 25, SalePrice: decimal.RequireFromString("0.45")},
				},
			},
		},
	)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func newEmailCustomer(t *testing.T, id uuid.UUID, email string) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer("CUST-001", "Rosas del Valle")
	require.NoError(t, err)
	customer.ID = id
	customer.Email = email
	customer.ClearDomainEvents()
	return customer
}

func expectFinancials(m *deliveryMocks, invoiceID uuid.UUID) {
	m.paymentRepo.On("FindByInvoice", mock.Anything, invoiceID).Return([]invoicing.Payment{}, nil)
	m.creditRepo.On("FindByInvoice", mock.Anything, invoiceID).Return([]invoicing.CreditNote{}, nil)
	m.debitRepo.On("FindByInvoice", mock.Anything, invoiceID).Return([]invoicing.DebitNote{}, nil)
}

// =============================================================================
// Tests
// =============================================================================

func TestDeliveryService_InvoicePDF(t *testing.T) {
	svc, m := newDeliveryService(t)
	inv := newSaleInvoice(t)
	customer := newEmailCustomer(t, *inv.CustomerID, "ap@rosasdelvalle.ec")

	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	expectFinancials(m, inv.ID)
	m.customerRepo.On("FindByID", mock.Anything, *inv.CustomerID).Return(customer, nil)

	result, err := svc.InvoicePDF(context.Background(), inv.ID)

	require.NoError(t, err)
	assert.Equal(t, "INV-20260310-00042.pdf", result.FileName)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, []byte("%PDF-1.4 stub"), result.Data)
	// Rendered document carries the resolved customer name
	require.NotNil(t, m.pdf.last)
	assert.Equal(t, "Rosas del Valle", m.pdf.last.CustomerName)
	// Archived copy lands in the store
	archived, err := m.store.Get(context.Background(), "invoices/INV-20260310-00042.pdf")
	require.NoError(t, err)
	assert.Equal(t, result.Data, archived)
}

func TestDeliveryService_InvoicePDF_ArchiveFailureIsNonFatal(t *testing.T) {
	svc, m := newDeliveryService(t)
	m.store.putErr = errors.New("bucket unreachable")
	inv := newSaleInvoice(t)
	customer := newEmailCustomer(t, *inv.CustomerID, "")

	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	expectFinancials(m, inv.ID)
	m.customerRepo.On("FindByID", mock.Anything, *inv.CustomerID).Return(customer, nil)

	result, err := svc.InvoicePDF(context.Background(), inv.ID)

	require.NoError(t, err)
	assert.NotEmpty(t, result.Data)
}

func TestDeliveryService_InvoicePDF_InvoiceNotFound(t *testing.T) {
	svc, m := newDeliveryService(t)
	id := uuid.New()
	m.invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.InvoicePDF(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeliveryService_EmailInvoice(t *testing.T) {
	svc, m := newDeliveryService(t)
	inv := newSaleInvoice(t)
	customer := newEmailCustomer(t, *inv.CustomerID, "ap@rosasdelvalle.ec")

	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	expectFinancials(m, inv.ID)
	m.customerRepo.On("FindByID", mock.Anything, *inv.CustomerID).Return(customer, nil)

	result, err := svc.EmailInvoice(context.Background(), inv.ID)

	require.NoError(t, err)
	assert.Equal(t, "INV-20260310-00042", result.InvoiceNumber)
	assert.Equal(t, "ap@rosasdelvalle.ec", result.SentTo)
	require.Len(t, m.mailer.sent, 1)
	msg := m.mailer.sent[0]
	assert.Equal(t, "ap@rosasdelvalle.ec", msg.To)
	assert.Equal(t, "Invoice INV-20260310-00042", msg.Subject)
	assert.Equal(t, "INV-20260310-00042.pdf", msg.AttachmentName)
	assert.NotEmpty(t, msg.Attachment)
	assert.Contains(t, msg.Body, "Rosas del Valle")
}

func TestDeliveryService_EmailInvoice_MissingEmail(t *testing.T) {
	svc, m := newDeliveryService(t)
	inv := newSaleInvoice(t)
	customer := newEmailCustomer(t, *inv.CustomerID, "")

	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	expectFinancials(m, inv.ID)
	m.customerRepo.On("FindByID", mock.Anything, *inv.CustomerID).Return(customer, nil)

	_, err := svc.EmailInvoice(context.Background(), inv.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_EMAIL", domainErr.Code)
	assert.Empty(t, m.mailer.sent)
}

func TestDeliveryService_EmailInvoice_MailerNotConfigured(t *testing.T) {
	svc, m := newDeliveryService(t)
	svc.mailer = nil

	_, err := svc.EmailInvoice(context.Background(), uuid.New())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMAIL_DISABLED", domainErr.Code)
	m.invoiceRepo.AssertNotCalled(t, "FindByID")
}

func TestDeliveryService_CustomerStatementExcel(t *testing.T) {
	svc, m := newDeliveryService(t)
	customerID := uuid.New()
	customer := newEmailCustomer(t, customerID, "ap@rosasdelvalle.ec")

	m.customerRepo.On("FindByID", mock.Anything, customerID).Return(customer, nil)
	m.invoiceRepo.On("FindByCustomer", mock.Anything, customerID, mock.Anything).Return([]invoicing.Invoice{}, nil)

	result, err := svc.CustomerStatementExcel(context.Background(), customerID, report.StatementFilter{})

	require.NoError(t, err)
	assert.Equal(t, "statement-"+customerID.String()+".xlsx", result.FileName)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.ContentType)
	assert.Equal(t, []byte("PK stub workbook"), result.Data)
}
