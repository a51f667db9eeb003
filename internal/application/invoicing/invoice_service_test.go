package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInvoiceService() (*InvoiceService, *paymentServiceMocks) {
	m := &paymentServiceMocks{
		invoiceRepo: new(MockInvoiceRepository),
		paymentRepo: new(MockPaymentRepository),
		creditRepo:  new(MockCreditNoteRepository),
		debitRepo:   new(MockDebitNoteRepository),
	}
	svc := NewInvoiceService(m.invoiceRepo, m.paymentRepo, m.creditRepo, m.debitRepo, zap.NewNop())
	return svc, m
}

// expectNoFinancials registers empty payment and note lookups so derived
// figures come out as subtotal == charge == balance.
func expectNoFinancials(m *paymentServiceMocks) {
	m.paymentRepo.On("FindByInvoice", mock.Anything, mock.Anything).Return([]invoicing.Payment{}, nil)
	m.creditRepo.On("FindByInvoice", mock.Anything, mock.Anything).Return([]invoicing.CreditNote{}, nil)
	m.debitRepo.On("FindByInvoice", mock.Anything, mock.Anything).Return([]invoicing.DebitNote{}, nil)
}

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()
	svc, m := newInvoiceService()

	customerID := uuid.New()
	m.invoiceRepo.On("GenerateInvoiceNumber", mock.Anything).Return("INV-20260830-00001", nil)
	m.invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)
	expectNoFinancials(m)

	resp, err := svc.Create(ctx, CreateInvoiceRequest{
		Type:       "SALE",
		CustomerID: &customerID,
		AWB:        "729-44556677",
		FlightDate: time.Now().AddDate(0, 0, -2),
		Items: []InvoiceItemRequest{
			{
				Variety:  "Explorer",
				BoxCount: 4,
				Bunches: []BunchRequest{
					{Quantity: 10, StemsPerBunch: 25, SalePrice: decimal.NewFromFloat(8.50)},
				},
			},
		},
		Remark: "first shipment of the season",
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-20260830-00001", resp.InvoiceNumber)
	assert.Equal(t, "PENDING", resp.Status)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromFloat(85)))
	assert.True(t, resp.Balance.Equal(decimal.NewFromFloat(85)))
	assert.Equal(t, "first shipment of the season", resp.Remark)
	m.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_RejectsInvalidInvoice(t *testing.T) {
	ctx := context.Background()
	svc, m := newInvoiceService()

	m.invoiceRepo.On("GenerateInvoiceNumber", mock.Anything).Return("INV-1", nil)

	// No customer and no farm
	_, err := svc.Create(ctx, CreateInvoiceRequest{
		Type:       "SALE",
		FlightDate: time.Now(),
		Items: []InvoiceItemRequest{
			{Variety: "Vendela", Bunches: []BunchRequest{{Quantity: 1, SalePrice: decimal.NewFromInt(5)}}},
		},
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	m.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_Get_DerivesFinancials(t *testing.T) {
	ctx := context.Background()
	svc, m := newInvoiceService()

	inv := newTestInvoice(t, 100, 5)
	m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	m.paymentRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.Payment{newTestPayment(t, inv.ID, 30)}, nil)
	m.creditRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.CreditNote{newTestCreditNote(t, inv.ID, 20)}, nil)
	m.debitRepo.On("FindByInvoice", mock.Anything, inv.ID).Return([]invoicing.DebitNote{newTestDebitNote(t, inv.ID, 5)}, nil)

	resp, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)

	// charge = 100 - 20 + 5, balance = charge - 30
	assert.True(t, resp.Charge.Equal(decimal.NewFromInt(85)))
	assert.True(t, resp.PaymentsTotal.Equal(decimal.NewFromInt(30)))
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(55)))
}

func TestInvoiceService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, m := newInvoiceService()

	id := uuid.New()
	m.invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Get(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceService_List(t *testing.T) {
	ctx := context.Background()
	svc, m := newInvoiceService()

	first := newTestInvoice(t, 50, 10)
	second := newTestInvoice(t, 75, 3)
	m.invoiceRepo.On("FindAll", mock.Anything, mock.AnythingOfType("invoicing.InvoiceFilter")).
		Return([]invoicing.Invoice{*first, *second}, nil)
	m.invoiceRepo.On("Count", mock.Anything, mock.AnythingOfType("invoicing.InvoiceFilter")).
		Return(int64(2), nil)
	expectNoFinancials(m)

	page, err := svc.List(ctx, InvoiceListFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)

	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].Balance.Equal(decimal.NewFromInt(50)))
	assert.True(t, page.Items[1].Balance.Equal(decimal.NewFromInt(75)))
}

func TestInvoiceService_UpdateItems(t *testing.T) {
	t.Run("replaces items on an unpaid invoice", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newInvoiceService()

		inv := newTestInvoice(t, 100, 5)
		m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		m.paymentRepo.On("ExistsByInvoice", mock.Anything, inv.ID).Return(false, nil)
		m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)
		expectNoFinancials(m)

		resp, err := svc.UpdateItems(ctx, inv.ID, UpdateInvoiceItemsRequest{
			Items: []InvoiceItemRequest{
				{
					Variety:  "Mondial",
					BoxCount: 2,
					Bunches:  []BunchRequest{{Quantity: 6, StemsPerBunch: 25, SalePrice: decimal.NewFromInt(12)}},
				},
			},
		})
		require.NoError(t, err)

		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(72)))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Mondial", resp.Items[0].Variety)
		m.invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejected once payments exist", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newInvoiceService()

		inv := newTestInvoice(t, 100, 5)
		m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		m.paymentRepo.On("ExistsByInvoice", mock.Anything, inv.ID).Return(true, nil)

		_, err := svc.UpdateItems(ctx, inv.ID, UpdateInvoiceItemsRequest{
			Items: []InvoiceItemRequest{
				{Variety: "Mondial", Bunches: []BunchRequest{{Quantity: 1, SalePrice: decimal.NewFromInt(12)}}},
			},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "HAS_PAYMENTS", domainErr.Code)
		m.invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	t.Run("deletes an unpaid invoice", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newInvoiceService()

		inv := newTestInvoice(t, 100, 5)
		m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		m.paymentRepo.On("ExistsByInvoice", mock.Anything, inv.ID).Return(false, nil)
		m.invoiceRepo.On("Delete", mock.Anything, inv.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, inv.ID))
		m.invoiceRepo.AssertExpectations(t)
	})

	t.Run("blocked once payments exist", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newInvoiceService()

		inv := newTestInvoice(t, 100, 5)
		m.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		m.paymentRepo.On("ExistsByInvoice", mock.Anything, inv.ID).Return(true, nil)

		err := svc.Delete(ctx, inv.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "HAS_PAYMENTS", domainErr.Code)
		m.invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_RefreshOverdueStatuses(t *testing.T) {
	ctx := context.Background()
	svc, m := newInvoiceService()

	pastDue := newTestInvoice(t, 100, 45)
	current := newTestInvoice(t, 100, 5)

	m.invoiceRepo.On("FindAll", mock.Anything, mock.AnythingOfType("invoicing.InvoiceFilter")).
		Return([]invoicing.Invoice{*pastDue, *current}, nil)
	m.paymentRepo.On("FindByInvoice", mock.Anything, pastDue.ID).Return([]invoicing.Payment{}, nil)
	m.creditRepo.On("FindByInvoice", mock.Anything, pastDue.ID).Return([]invoicing.CreditNote{}, nil)
	m.debitRepo.On("FindByInvoice", mock.Anything, pastDue.ID).Return([]invoicing.DebitNote{}, nil)
	m.invoiceRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool {
		return inv.ID == pastDue.ID && inv.Status == invoicing.InvoiceStatusOverdue
	})).Return(nil)

	flipped, err := svc.RefreshOverdueStatuses(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, flipped)
	m.invoiceRepo.AssertExpectations(t)
}
