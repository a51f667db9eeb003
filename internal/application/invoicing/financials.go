package invoicing

import (
	"context"
	"fmt"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// invoiceFinancials carries the derived figures for one invoice
type invoiceFinancials struct {
	Subtotal      decimal.Decimal
	CreditsTotal  decimal.Decimal
	DebitsTotal   decimal.Decimal
	Charge        decimal.Decimal
	PaymentsTotal decimal.Decimal
	Balance       decimal.Decimal
}

// financialsLoader computes an invoice's charge and outstanding balance from
// the payment and note stores. Every status decision goes through here so the
// aggregation is the single source of truth.
type financialsLoader struct {
	paymentRepo    invoicing.PaymentRepository
	creditNoteRepo invoicing.CreditNoteRepository
	debitNoteRepo  invoicing.DebitNoteRepository
}

func newFinancialsLoader(
	paymentRepo invoicing.PaymentRepository,
	creditNoteRepo invoicing.CreditNoteRepository,
	debitNoteRepo invoicing.DebitNoteRepository,
) *financialsLoader {
	return &financialsLoader{
		paymentRepo:    paymentRepo,
		creditNoteRepo: creditNoteRepo,
		debitNoteRepo:  debitNoteRepo,
	}
}

// Load recomputes the financial figures for the invoice from stored records.
func (l *financialsLoader) Load(ctx context.Context, inv *invoicing.Invoice) (*invoiceFinancials, error) {
	payments, err := l.paymentRepo.FindByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	credits, err := l.creditNoteRepo.FindByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit notes: %w", err)
	}
	debits, err := l.debitNoteRepo.FindByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load debit notes: %w", err)
	}

	subtotal := inv.Subtotal()
	creditsTotal := invoicing.SumCreditNotes(credits)
	debitsTotal := invoicing.SumDebitNotes(debits)
	charge := invoicing.Charge(subtotal, creditsTotal, debitsTotal)
	paymentsTotal := invoicing.SumPayments(payments)

	return &invoiceFinancials{
		Subtotal:      subtotal,
		CreditsTotal:  creditsTotal,
		DebitsTotal:   debitsTotal,
		Charge:        charge,
		PaymentsTotal: paymentsTotal,
		Balance:       charge.Sub(paymentsTotal),
	}, nil
}
