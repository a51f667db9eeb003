package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService handles invoice lifecycle operations
type InvoiceService struct {
	invoiceRepo    invoicing.InvoiceRepository
	paymentRepo    invoicing.PaymentRepository
	creditNoteRepo invoicing.CreditNoteRepository
	debitNoteRepo  invoicing.DebitNoteRepository
	financials     *financialsLoader
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
	creditNoteRepo invoicing.CreditNoteRepository,
	debitNoteRepo invoicing.DebitNoteRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		creditNoteRepo: creditNoteRepo,
		debitNoteRepo:  debitNoteRepo,
		financials:     newFinancialsLoader(paymentRepo, creditNoteRepo, debitNoteRepo),
		logger:         logger,
	}
}

// Create creates a new invoice
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	number, err := s.invoiceRepo.GenerateInvoiceNumber(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	inv, err := invoicing.NewInvoice(
		number,
		invoicing.InvoiceType(req.Type),
		req.CustomerID,
		req.FarmID,
		req.AWB,
		req.FlightDate,
		toInvoiceItems(req.Items),
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Remark != "" {
		inv.Remark = req.Remark
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, inv.ID.String(),
		telemetry.SpanAttrInvoiceNumber, inv.InvoiceNumber,
	)
	s.logger.Info("Invoice created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("type", req.Type),
		zap.String("subtotal", inv.Subtotal().String()),
	)

	return s.toResponse(ctx, inv, time.Now())
}

// Get returns an invoice with its derived financial figures
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, inv, time.Now())
}

// GetByNumber returns an invoice looked up by its invoice number
func (s *InvoiceService) GetByNumber(ctx context.Context, invoiceNumber string) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, inv, time.Now())
}

// List returns invoices matching the filter, with derived figures per invoice
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := toDomainFilter(filter)

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		resp, err := s.toResponse(ctx, &invoices[i], now)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	page := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// UpdateItems replaces the line items of an invoice that has no payments yet
func (s *InvoiceService) UpdateItems(ctx context.Context, id uuid.UUID, req UpdateInvoiceItemsRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update_items")
	defer span.End()

	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	hasPayments, err := s.paymentRepo.ExistsByInvoice(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check payments: %w", err)
	}

	if err := inv.ReplaceItems(toInvoiceItems(req.Items), hasPayments); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Changed line totals can move the status even without payments
	// (e.g. notes already cover the new, smaller charge).
	fin, err := s.financials.Load(ctx, inv)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	now := time.Now()
	inv.RefreshStatus(fin.Balance, now)

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return s.toResponse(ctx, inv, now)
}

// Delete removes an invoice that has no payments recorded against it
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete")
	defer span.End()

	if _, err := s.invoiceRepo.FindByID(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	hasPayments, err := s.paymentRepo.ExistsByInvoice(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to check payments: %w", err)
	}
	if hasPayments {
		err := shared.NewDomainError("HAS_PAYMENTS", "Cannot delete an invoice with recorded payments")
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

// overduePageSize is the batch size when scanning pending invoices.
const overduePageSize = 500

// RefreshOverdueStatuses walks open invoices and flips PENDING ones past
// their due date to OVERDUE. Intended to run from a daily scheduler tick.
func (s *InvoiceService) RefreshOverdueStatuses(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "refresh_overdue")
	defer span.End()

	pending := invoicing.InvoiceStatusPending
	invoices, err := shared.CollectAllPages(overduePageSize, func(page int) ([]invoicing.Invoice, error) {
		filter := invoicing.InvoiceFilter{Filter: shared.Filter{Page: page, PageSize: overduePageSize}, Status: &pending}
		return s.invoiceRepo.FindAll(ctx, filter)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	now := time.Now()
	flipped := 0
	for i := range invoices {
		inv := &invoices[i]
		if !now.After(inv.DueDate()) {
			continue
		}
		fin, err := s.financials.Load(ctx, inv)
		if err != nil {
			telemetry.RecordError(span, err)
			return flipped, err
		}
		if !inv.RefreshStatus(fin.Balance, now) {
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			// Another writer got there first; its save already re-derived
			// the status.
			if isConcurrencyConflict(err) {
				continue
			}
			telemetry.RecordError(span, err)
			return flipped, err
		}
		flipped++
	}

	if flipped > 0 {
		s.logger.Info("Marked invoices overdue", zap.Int("count", flipped))
	}
	return flipped, nil
}

func (s *InvoiceService) toResponse(ctx context.Context, inv *invoicing.Invoice, now time.Time) (*InvoiceResponse, error) {
	fin, err := s.financials.Load(ctx, inv)
	if err != nil {
		return nil, err
	}

	return &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Type:          inv.Type.String(),
		CustomerID:    inv.CustomerID,
		FarmID:        inv.FarmID,
		AWB:           inv.AWB,
		FlightDate:    inv.FlightDate,
		DueDate:       inv.DueDate(),
		Items:         inv.Items,
		Status:        inv.Status.String(),
		Subtotal:      fin.Subtotal,
		CreditsTotal:  fin.CreditsTotal,
		DebitsTotal:   fin.DebitsTotal,
		Charge:        fin.Charge,
		PaymentsTotal: fin.PaymentsTotal,
		Balance:       fin.Balance,
		DaysOverdue:   inv.DaysOverdue(now),
		Remark:        inv.Remark,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
	}, nil
}

func toDomainFilter(filter InvoiceListFilter) invoicing.InvoiceFilter {
	base := shared.DefaultFilter()
	if filter.Page > 0 {
		base.Page = filter.Page
	}
	if filter.PageSize > 0 {
		base.PageSize = filter.PageSize
	}
	base.Search = filter.Search
	base.OrderBy = filter.OrderBy
	base.OrderDir = filter.OrderDir

	df := invoicing.InvoiceFilter{Filter: base}
	if filter.Type != "" {
		t := invoicing.InvoiceType(filter.Type)
		df.Type = &t
	}
	if filter.Status != "" {
		st := invoicing.InvoiceStatus(filter.Status)
		df.Status = &st
	}
	df.CustomerID = filter.CustomerID
	df.FarmID = filter.FarmID
	df.FlightFrom = filter.FlightFrom
	df.FlightTo = filter.FlightTo
	return df
}
