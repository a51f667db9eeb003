package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/domain/shared/valueobject"
	"github.com/florexport/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoteService issues and removes credit and debit notes. Every mutation
// re-derives the invoice status, since notes change the charge; the note
// write and the status update commit in one transaction.
type NoteService struct {
	invoiceRepo    invoicing.InvoiceRepository
	paymentRepo    invoicing.PaymentRepository
	creditNoteRepo invoicing.CreditNoteRepository
	debitNoteRepo  invoicing.DebitNoteRepository
	financials     *financialsLoader
	uow            shared.UnitOfWork
	logger         *zap.Logger
}

// NewNoteService creates a new NoteService
func NewNoteService(
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
	creditNoteRepo invoicing.CreditNoteRepository,
	debitNoteRepo invoicing.DebitNoteRepository,
	uow shared.UnitOfWork,
	logger *zap.Logger,
) *NoteService {
	return &NoteService{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		creditNoteRepo: creditNoteRepo,
		debitNoteRepo:  debitNoteRepo,
		financials:     newFinancialsLoader(paymentRepo, creditNoteRepo, debitNoteRepo),
		uow:            uow,
		logger:         logger,
	}
}

// CreateCreditNote issues a credit note, reducing the invoice charge
func (s *NoteService) CreateCreditNote(ctx context.Context, req CreateNoteRequest) (*NoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "create")
	defer span.End()

	if _, err := s.invoiceRepo.FindByID(ctx, req.InvoiceID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var note *invoicing.CreditNote
	err := s.uow.InTransaction(ctx, func(ctx context.Context) error {
		number, err := s.creditNoteRepo.GenerateNoteNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate note number: %w", err)
		}

		note, err = invoicing.NewCreditNote(number, req.InvoiceID, valueobject.NewMoneyUSD(req.Amount), req.Reason)
		if err != nil {
			return err
		}

		if err := s.creditNoteRepo.Save(ctx, note); err != nil {
			return fmt.Errorf("failed to save credit note: %w", err)
		}

		return s.refreshInvoice(ctx, req.InvoiceID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Credit note issued",
		zap.String("note_number", note.NoteNumber),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.String()),
	)

	resp := toNoteResponse(note.ID, note.NoteNumber, note.InvoiceID, note.Amount, note.Reason, note.CreatedAt)
	return &resp, nil
}

// CreateDebitNote issues a debit note, increasing the invoice charge
func (s *NoteService) CreateDebitNote(ctx context.Context, req CreateNoteRequest) (*NoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debit_note", "create")
	defer span.End()

	if _, err := s.invoiceRepo.FindByID(ctx, req.InvoiceID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var note *invoicing.DebitNote
	err := s.uow.InTransaction(ctx, func(ctx context.Context) error {
		number, err := s.debitNoteRepo.GenerateNoteNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate note number: %w", err)
		}

		note, err = invoicing.NewDebitNote(number, req.InvoiceID, valueobject.NewMoneyUSD(req.Amount), req.Reason)
		if err != nil {
			return err
		}

		if err := s.debitNoteRepo.Save(ctx, note); err != nil {
			return fmt.Errorf("failed to save debit note: %w", err)
		}

		return s.refreshInvoice(ctx, req.InvoiceID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Debit note issued",
		zap.String("note_number", note.NoteNumber),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.String()),
	)

	resp := toNoteResponse(note.ID, note.NoteNumber, note.InvoiceID, note.Amount, note.Reason, note.CreatedAt)
	return &resp, nil
}

// DeleteCreditNote removes a credit note and re-derives the invoice status
func (s *NoteService) DeleteCreditNote(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "delete")
	defer span.End()

	note, err := s.creditNoteRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	err = s.uow.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.creditNoteRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete credit note: %w", err)
		}
		return s.refreshInvoice(ctx, note.InvoiceID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Credit note deleted", zap.String("note_number", note.NoteNumber))
	return nil
}

// DeleteDebitNote removes a debit note and re-derives the invoice status
func (s *NoteService) DeleteDebitNote(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "debit_note", "delete")
	defer span.End()

	note, err := s.debitNoteRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	err = s.uow.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.debitNoteRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete debit note: %w", err)
		}
		return s.refreshInvoice(ctx, note.InvoiceID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Debit note deleted", zap.String("note_number", note.NoteNumber))
	return nil
}

// ListByInvoice returns the credit and debit notes referencing an invoice
func (s *NoteService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]NoteResponse, []NoteResponse, error) {
	credits, err := s.creditNoteRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	debits, err := s.debitNoteRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	creditResponses := make([]NoteResponse, 0, len(credits))
	for i := range credits {
		n := &credits[i]
		creditResponses = append(creditResponses, toNoteResponse(n.ID, n.NoteNumber, n.InvoiceID, n.Amount, n.Reason, n.CreatedAt))
	}
	debitResponses := make([]NoteResponse, 0, len(debits))
	for i := range debits {
		n := &debits[i]
		debitResponses = append(debitResponses, toNoteResponse(n.ID, n.NoteNumber, n.InvoiceID, n.Amount, n.Reason, n.CreatedAt))
	}
	return creditResponses, debitResponses, nil
}

func (s *NoteService) refreshInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	now := time.Now()
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		fin, err := s.financials.Load(ctx, inv)
		if err != nil {
			return err
		}
		if !inv.RefreshStatus(fin.Balance, now) {
			return nil
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			if isConcurrencyConflict(err) {
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("failed to update invoice status after %d attempts", maxLockAttempts)
}
