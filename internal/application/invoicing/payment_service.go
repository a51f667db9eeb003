package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/domain/shared/valueobject"
	"github.com/florexport/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxLockAttempts bounds retries when a concurrent writer bumps the invoice
// version between our read and our save.
const maxLockAttempts = 3

// bulkIdempotencyTTL is how long a bulk payment idempotency key is reserved.
const bulkIdempotencyTTL = 24 * time.Hour

// IdempotencyStore reserves request keys so a retried bulk payment is not
// applied twice.
type IdempotencyStore interface {
	// Reserve claims the key. Returns false if it was already claimed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees the key, allowing the request to be retried.
	Release(ctx context.Context, key string) error
}

// PaymentService records payments against invoices and keeps the derived
// invoice status in sync with the outstanding balance.
type PaymentService struct {
	invoiceRepo invoicing.InvoiceRepository
	paymentRepo invoicing.PaymentRepository
	financials  *financialsLoader
	idempotency IdempotencyStore
	uow         shared.UnitOfWork
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService. The idempotency store may
// be nil, in which case bulk idempotency keys are ignored.
func NewPaymentService(
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
	creditNoteRepo invoicing.CreditNoteRepository,
	debitNoteRepo invoicing.DebitNoteRepository,
	idempotency IdempotencyStore,
	uow shared.UnitOfWork,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		financials:  newFinancialsLoader(paymentRepo, creditNoteRepo, debitNoteRepo),
		idempotency: idempotency,
		uow:         uow,
		logger:      logger,
	}
}

// Apply records a single payment against one invoice and re-derives the
// invoice status from the new balance. Overpayment is allowed; the balance
// simply goes negative and the invoice counts as paid.
func (s *PaymentService) Apply(ctx context.Context, req ApplyPaymentRequest) (*ApplyPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "apply")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if _, err := s.invoiceRepo.FindByID(ctx, req.InvoiceID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// The payment record and the derived status update commit together, so a
	// failure on either side leaves the invoice untouched.
	var (
		payment *invoicing.Payment
		balance decimal.Decimal
		status  invoicing.InvoiceStatus
	)
	err := s.uow.InTransaction(ctx, func(ctx context.Context) error {
		number, err := s.paymentRepo.GeneratePaymentNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate payment number: %w", err)
		}

		payment, err = invoicing.NewPayment(
			number,
			req.InvoiceID,
			valueobject.NewMoneyUSD(req.Amount),
			req.PaymentDate,
			invoicing.PaymentMethod(req.Method),
			req.Reference,
			req.Notes,
		)
		if err != nil {
			return err
		}

		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		balance, status, err = s.syncInvoiceStatus(ctx, req.InvoiceID, time.Now())
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "payment_applied",
		telemetry.SpanAttrPaymentNumber, payment.PaymentNumber,
		"new_balance", balance.String(),
	)
	telemetry.RecordPaymentApplied(ctx, req.Method, req.Amount)
	s.logger.Info("Payment applied",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("new_balance", balance.String()),
	)

	return &ApplyPaymentResult{
		Payment:    toPaymentResponse(payment),
		NewBalance: balance,
		Status:     status.String(),
	}, nil
}

// ApplyBulk distributes one received amount across the party's outstanding
// invoices, oldest flight date first. Settled invoices are skipped. Anything
// left after all invoices are settled stays unapplied and is surfaced in the
// result with a warning.
func (s *PaymentService) ApplyBulk(ctx context.Context, req BulkPaymentRequest) (*BulkPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "apply_bulk")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, req.Amount.String())

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if (req.CustomerID == nil) == (req.FarmID == nil) {
		err := shared.NewDomainError("INVALID_PARTY", "Exactly one of customer_id or farm_id is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		reserved, err := s.idempotency.Reserve(ctx, req.IdempotencyKey, bulkIdempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if !reserved {
			err := shared.NewDomainError("DUPLICATE_REQUEST", "A bulk payment with this idempotency key was already processed")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	result, err := s.applyBulk(ctx, req)
	if err != nil && req.IdempotencyKey != "" && s.idempotency != nil {
		if relErr := s.idempotency.Release(ctx, req.IdempotencyKey); relErr != nil {
			s.logger.Warn("Failed to release idempotency key",
				zap.String("key", req.IdempotencyKey),
				zap.Error(relErr),
			)
		}
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBulkID, result.BulkID.String(),
		"total_applied", result.TotalApplied.String(),
		"unapplied", result.UnappliedAmount.String(),
	)
	return result, nil
}

func (s *PaymentService) applyBulk(ctx context.Context, req BulkPaymentRequest) (*BulkPaymentResult, error) {
	invoices, err := s.findPartyInvoices(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	byID := make(map[uuid.UUID]*invoicing.Invoice, len(invoices))
	entries := make([]invoicing.AllocationEntry, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		fin, err := s.financials.Load(ctx, inv)
		if err != nil {
			return nil, err
		}
		// Settled and overpaid invoices take no allocation
		if fin.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		byID[inv.ID] = inv
		entries = append(entries, invoicing.AllocationEntry{
			InvoiceID:  inv.ID,
			Balance:    fin.Balance,
			FlightDate: inv.FlightDate,
		})
	}

	invoicing.SortOldestFlightFirst(entries)

	allocation, err := invoicing.AllocatePayment(entries, req.Amount, now)
	if err != nil {
		return nil, err
	}

	// Every payment row and status update of the bulk shares one transaction;
	// a failure part-way through rolls back the allocations already written.
	bulkID := uuid.New()
	responses := make([]BulkAllocationResponse, 0, len(allocation.Allocations))
	err = s.uow.InTransaction(ctx, func(ctx context.Context) error {
		for _, a := range allocation.Allocations {
			inv := byID[a.InvoiceID]

			number, err := s.paymentRepo.GeneratePaymentNumber(ctx)
			if err != nil {
				return fmt.Errorf("failed to generate payment number: %w", err)
			}
			payment, err := invoicing.NewPayment(
				number,
				a.InvoiceID,
				valueobject.NewMoneyUSD(a.Applied),
				req.PaymentDate,
				invoicing.PaymentMethod(req.Method),
				req.Reference,
				req.Notes,
			)
			if err != nil {
				return err
			}
			payment.WithBulkID(bulkID)

			if err := s.paymentRepo.Save(ctx, payment); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}

			balance, status, err := s.syncInvoiceStatus(ctx, a.InvoiceID, now)
			if err != nil {
				return err
			}

			responses = append(responses, BulkAllocationResponse{
				InvoiceID:     a.InvoiceID,
				InvoiceNumber: inv.InvoiceNumber,
				Applied:       a.Applied,
				NewBalance:    balance,
				Status:        status.String(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if allocation.Unapplied.GreaterThan(decimal.Zero) {
		s.logger.Warn("Bulk payment exceeds total outstanding balance; excess left unapplied",
			zap.String("bulk_id", bulkID.String()),
			zap.String("unapplied", allocation.Unapplied.String()),
		)
	}

	s.logger.Info("Bulk payment applied",
		zap.String("bulk_id", bulkID.String()),
		zap.Int("invoices", len(responses)),
		zap.String("total_applied", allocation.TotalApplied().String()),
	)
	telemetry.RecordBulkPayment(ctx, len(responses), allocation.TotalApplied())

	return &BulkPaymentResult{
		BulkID:          bulkID,
		Allocations:     responses,
		TotalApplied:    allocation.TotalApplied(),
		UnappliedAmount: allocation.Unapplied,
	}, nil
}

// Delete removes a payment record and re-derives the invoice status from the
// remaining payments.
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()

	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	err = s.uow.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		_, _, err := s.syncInvoiceStatus(ctx, payment.InvoiceID, time.Now())
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Payment deleted",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("invoice_id", payment.InvoiceID.String()),
	)
	return nil
}

// ListByInvoice returns all payments recorded against an invoice
func (s *PaymentService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, toPaymentResponse(&payments[i]))
	}
	return responses, nil
}

// ListByBulkID returns all payments recorded by one bulk allocation
func (s *PaymentService) ListByBulkID(ctx context.Context, bulkID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByBulkID(ctx, bulkID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, toPaymentResponse(&payments[i]))
	}
	return responses, nil
}

// syncInvoiceStatus re-derives the invoice status from the stored payments
// and notes, retrying when a concurrent writer wins the version race. Each
// retry re-reads the invoice and recomputes the balance, so the last write
// always reflects the full payment history.
func (s *PaymentService) syncInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, now time.Time) (decimal.Decimal, invoicing.InvoiceStatus, error) {
	var lastErr error
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return decimal.Zero, "", err
		}
		fin, err := s.financials.Load(ctx, inv)
		if err != nil {
			return decimal.Zero, "", err
		}

		if !inv.RefreshStatus(fin.Balance, now) {
			return fin.Balance, inv.Status, nil
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			if isConcurrencyConflict(err) {
				lastErr = err
				continue
			}
			return decimal.Zero, "", err
		}
		return fin.Balance, inv.Status, nil
	}
	return decimal.Zero, "", fmt.Errorf("failed to update invoice status after %d attempts: %w", maxLockAttempts, lastErr)
}

func isConcurrencyConflict(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == shared.ErrConcurrencyConflict.Code
	}
	return false
}

// partyInvoicePageSize is the batch size when draining a party's invoices.
const partyInvoicePageSize = 1000

func (s *PaymentService) findPartyInvoices(ctx context.Context, req BulkPaymentRequest) ([]invoicing.Invoice, error) {
	// All of a party's invoices are candidates; settled ones are filtered
	// out by balance, not by the stored status, so a stale status cannot
	// hide an open invoice.
	return shared.CollectAllPages(partyInvoicePageSize, func(page int) ([]invoicing.Invoice, error) {
		filter := invoicing.InvoiceFilter{Filter: shared.Filter{Page: page, PageSize: partyInvoicePageSize, OrderBy: "flight_date", OrderDir: "asc"}}
		if req.CustomerID != nil {
			return s.invoiceRepo.FindByCustomer(ctx, *req.CustomerID, filter)
		}
		return s.invoiceRepo.FindByFarm(ctx, *req.FarmID, filter)
	})
}
