package invoicing

import (
	"context"
	"testing"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNoteService() (*NoteService, *paymentServiceMocks) {
	m := &paymentServiceMocks{
		invoiceRepo: new(MockInvoiceRepository),
		paymentRepo: new(MockPaymentRepository),
		creditRepo:  new(MockCreditNoteRepository),
		debitRepo:   new(MockDebitNoteRepository),
		uow:         new(recordingUnitOfWork),
	}
	svc := NewNoteService(m.invoiceRepo, m.paymentRepo, m.creditRepo, m.debitRepo, m.uow, zap.NewNop())
	return svc, m
}

func TestNoteService_CreateCreditNote_CanSettleInvoice(t *testing.T) {
	// Subtotal 100, payments 80: balance 20. A credit note of 20 settles it.
	ctx := context.Background()
	svc, m := newNoteService()

	inv := newTestInvoice(t, 100, 5)
	credit := newTestCreditNote(t, inv.ID, 20)

	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	m.creditRepo.On("GenerateNoteNumber", mock.Anything).Return("CN-20260830-00001", nil)
	m.creditRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.CreditNote")).Return(nil)
	m.creditRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.CreditNote{credit}, nil)
	m.debitRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.DebitNote{}, nil)
	m.paymentRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.Payment{newTestPayment(t, inv.ID, 80)}, nil)
	m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)

	resp, err := svc.CreateCreditNote(ctx, CreateNoteRequest{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(20),
		Reason:    "damaged boxes on arrival",
	})
	require.NoError(t, err)

	assert.Equal(t, "CN-20260830-00001", resp.NoteNumber)
	assert.Equal(t, invoicing.InvoiceStatusPaid, inv.Status)
	m.creditRepo.AssertExpectations(t)
}

func TestNoteService_CreateDebitNote_IncreasesCharge(t *testing.T) {
	// A settled invoice reopens when a debit note raises the charge.
	ctx := context.Background()
	svc, m := newNoteService()

	inv := newTestInvoice(t, 100, 5)
	inv.Status = invoicing.InvoiceStatusPaid
	debit := newTestDebitNote(t, inv.ID, 15)

	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	m.debitRepo.On("GenerateNoteNumber", mock.Anything).Return("DN-1", nil)
	m.debitRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.DebitNote")).Return(nil)
	m.debitRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.DebitNote{debit}, nil)
	m.creditRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.CreditNote{}, nil)
	m.paymentRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.Payment{newTestPayment(t, inv.ID, 100)}, nil)
	m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)

	_, err := svc.CreateDebitNote(ctx, CreateNoteRequest{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(15),
		Reason:    "extra freight charge",
	})
	require.NoError(t, err)

	// Balance 15 outstanding again, flight only 5 days ago
	assert.Equal(t, invoicing.InvoiceStatusPending, inv.Status)
}

func TestNoteService_CreateCreditNote_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	svc, m := newNoteService()

	inv := newTestInvoice(t, 100, 5)
	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	m.creditRepo.On("GenerateNoteNumber", mock.Anything).Return("CN-1", nil)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-20)} {
		_, err := svc.CreateCreditNote(ctx, CreateNoteRequest{
			InvoiceID: inv.ID,
			Amount:    amount,
			Reason:    "claim",
		})
		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	}
}

func TestNoteService_DeleteCreditNote_RefreshesStatus(t *testing.T) {
	// Removing the settling credit note reopens the invoice.
	ctx := context.Background()
	svc, m := newNoteService()

	inv := newTestInvoice(t, 100, 5)
	inv.Status = invoicing.InvoiceStatusPaid
	credit := newTestCreditNote(t, inv.ID, 20)

	m.creditRepo.On("FindByID", mock.Anything, credit.ID).Return(&credit, nil)
	m.creditRepo.On("Delete", mock.Anything, credit.ID).Return(nil)
	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	m.creditRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.CreditNote{}, nil)
	m.debitRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.DebitNote{}, nil)
	m.paymentRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.Payment{newTestPayment(t, inv.ID, 80)}, nil)
	m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)

	err := svc.DeleteCreditNote(ctx, credit.ID)
	require.NoError(t, err)

	assert.Equal(t, invoicing.InvoiceStatusPending, inv.Status)
}

func TestNoteService_CreateCreditNote_RollsBackWhenStatusUpdateFails(t *testing.T) {
	// A settling credit note must not persist on its own when the status
	// update keeps losing the version race.
	ctx := context.Background()
	svc, m := newNoteService()

	inv := newTestInvoice(t, 100, 5)
	credit := newTestCreditNote(t, inv.ID, 20)
	// Fresh copy per read, the way a repository would return rows; every
	// attempt sees the stored PENDING status and loses the save.
	reads := []invoicing.Invoice{*inv, *inv, *inv}

	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()
	for i := range reads {
		m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(&reads[i], nil).Once()
	}
	m.creditRepo.On("GenerateNoteNumber", mock.Anything).Return("CN-1", nil)
	m.creditRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.CreditNote")).Return(nil)
	m.creditRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.CreditNote{credit}, nil)
	m.debitRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.DebitNote{}, nil)
	m.paymentRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.Payment{newTestPayment(t, inv.ID, 80)}, nil)
	m.invoiceRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

	_, err := svc.CreateCreditNote(ctx, CreateNoteRequest{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(20),
		Reason:    "claim",
	})
	require.Error(t, err)

	m.creditRepo.AssertCalled(t, "Save", mock.Anything, mock.AnythingOfType("*invoicing.CreditNote"))
	assert.Equal(t, 1, m.uow.begun)
	assert.Equal(t, 1, m.uow.rolledBack)
	assert.Equal(t, 0, m.uow.committed)
}
