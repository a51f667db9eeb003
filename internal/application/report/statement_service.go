package report

import (
	"context"
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/partner"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// statementPageSize is the batch size when draining invoices for a statement
// or aging pass; pages are fetched until a short one signals the end.
const statementPageSize = 1000

// StatementService builds customer account statements and the receivables
// aging report. Figures are derived from the payment and note tables, never
// read off the invoice row.
type StatementService struct {
	customerRepo   partner.CustomerRepository
	invoiceRepo    invoicing.InvoiceRepository
	paymentRepo    invoicing.PaymentRepository
	creditNoteRepo invoicing.CreditNoteRepository
	debitNoteRepo  invoicing.DebitNoteRepository
}

// NewStatementService creates a new StatementService
func NewStatementService(
	customerRepo partner.CustomerRepository,
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
	creditNoteRepo invoicing.CreditNoteRepository,
	debitNoteRepo invoicing.DebitNoteRepository,
) *StatementService {
	return &StatementService{
		customerRepo:   customerRepo,
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		creditNoteRepo: creditNoteRepo,
		debitNoteRepo:  debitNoteRepo,
	}
}

// CustomerStatement returns the ordered invoice history of a customer with a
// running balance, bounded by the filter's flight date range.
func (s *StatementService) CustomerStatement(ctx context.Context, customerID uuid.UUID, filter StatementFilter) (*StatementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "customer")
	defer span.End()

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoices, err := shared.CollectAllPages(statementPageSize, func(page int) ([]invoicing.Invoice, error) {
		domainFilter := invoicing.InvoiceFilter{
			Filter:     shared.Filter{Page: page, PageSize: statementPageSize, OrderBy: "flight_date", OrderDir: "asc"},
			FlightFrom: filter.FromDate,
			FlightTo:   filter.ToDate,
		}
		return s.invoiceRepo.FindByCustomer(ctx, customerID, domainFilter)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &StatementResponse{
		CustomerID:   customerID,
		CustomerName: customer.Name,
		FromDate:     filter.FromDate,
		ToDate:       filter.ToDate,
		GeneratedAt:  time.Now(),
		Lines:        make([]StatementLine, 0, len(invoices)),
		TotalCharge:  decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalBalance: decimal.Zero,
	}

	running := decimal.Zero
	for i := range invoices {
		inv := &invoices[i]
		charge, paid, balance, err := s.invoiceFigures(ctx, inv)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		running = running.Add(balance)

		resp.Lines = append(resp.Lines, StatementLine{
			InvoiceID:      inv.ID,
			InvoiceNumber:  inv.InvoiceNumber,
			FlightDate:     inv.FlightDate,
			DueDate:        inv.DueDate(),
			AWB:            inv.AWB,
			Status:         inv.Status.String(),
			Charge:         charge,
			Paid:           paid,
			Balance:        balance,
			RunningBalance: running,
		})
		resp.TotalCharge = resp.TotalCharge.Add(charge)
		resp.TotalPaid = resp.TotalPaid.Add(paid)
	}
	resp.TotalBalance = running

	return resp, nil
}

// AgingReport buckets every outstanding customer balance by days past due.
// Due date is flight date plus the payment term.
func (s *StatementService) AgingReport(ctx context.Context) (*AgingReportResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "aging")
	defer span.End()

	now := time.Now()
	invoices, err := shared.CollectAllPages(statementPageSize, func(page int) ([]invoicing.Invoice, error) {
		domainFilter := invoicing.InvoiceFilter{
			Filter: shared.Filter{Page: page, PageSize: statementPageSize, OrderBy: "flight_date", OrderDir: "asc"},
		}
		return s.invoiceRepo.FindAll(ctx, domainFilter)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rowsByCustomer := make(map[uuid.UUID]*AgingRow)
	order := make([]uuid.UUID, 0)
	total := decimal.Zero

	for i := range invoices {
		inv := &invoices[i]
		if inv.CustomerID == nil {
			continue
		}
		_, _, balance, err := s.invoiceFigures(ctx, inv)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if !balance.IsPositive() {
			continue
		}

		row, ok := rowsByCustomer[*inv.CustomerID]
		if !ok {
			customer, err := s.customerRepo.FindByID(ctx, *inv.CustomerID)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
			row = &AgingRow{
				CustomerID:   customer.ID,
				CustomerName: customer.Name,
				Current:      decimal.Zero,
				Days1To30:    decimal.Zero,
				Days31To60:   decimal.Zero,
				Days61To90:   decimal.Zero,
				Over90:       decimal.Zero,
				Total:        decimal.Zero,
			}
			rowsByCustomer[*inv.CustomerID] = row
			order = append(order, *inv.CustomerID)
		}

		switch bucket := BucketFor(inv.DueDate(), now); bucket {
		case AgingCurrent:
			row.Current = row.Current.Add(balance)
		case AgingDays1To30:
			row.Days1To30 = row.Days1To30.Add(balance)
		case AgingDays31To60:
			row.Days31To60 = row.Days31To60.Add(balance)
		case AgingDays61To90:
			row.Days61To90 = row.Days61To90.Add(balance)
		case AgingOver90:
			row.Over90 = row.Over90.Add(balance)
		}
		row.Total = row.Total.Add(balance)
		total = total.Add(balance)
	}

	resp := &AgingReportResponse{
		GeneratedAt: now,
		Rows:        make([]AgingRow, 0, len(order)),
		Total:       total,
	}
	for _, id := range order {
		resp.Rows = append(resp.Rows, *rowsByCustomer[id])
	}
	return resp, nil
}

// BucketFor places a due date into an aging bucket relative to now
func BucketFor(dueDate, now time.Time) AgingBucket {
	if !now.After(dueDate) {
		return AgingCurrent
	}
	days := int(now.Sub(dueDate).Hours() / 24)
	switch {
	case days <= 30:
		return AgingDays1To30
	case days <= 60:
		return AgingDays31To60
	case days <= 90:
		return AgingDays61To90
	default:
		return AgingOver90
	}
}

func (s *StatementService) invoiceFigures(ctx context.Context, inv *invoicing.Invoice) (charge, paid, balance decimal.Decimal, err error) {
	payments, err := s.paymentRepo.FindByInvoice(ctx, inv.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	credits, err := s.creditNoteRepo.FindByInvoice(ctx, inv.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	debits, err := s.debitNoteRepo.FindByInvoice(ctx, inv.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}

	charge = invoicing.Charge(inv.Subtotal(), invoicing.SumCreditNotes(credits), invoicing.SumDebitNotes(debits))
	paid = invoicing.SumPayments(payments)
	balance = charge.Sub(paid)
	return charge, paid, balance, nil
}
