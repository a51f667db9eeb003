package delivery

import (
	"context"
	"fmt"

	appinvoicing "github.com/florexport/backend/internal/application/invoicing"
	"github.com/florexport/backend/internal/application/report"
	"github.com/florexport/backend/internal/domain/partner"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoicePDFRenderer renders an invoice document to PDF bytes
type InvoicePDFRenderer interface {
	RenderInvoice(doc InvoiceDocument) ([]byte, error)
}

// StatementExcelRenderer renders an account statement to XLSX bytes
type StatementExcelRenderer interface {
	RenderStatement(stmt *report.StatementResponse) ([]byte, error)
}

// DocumentStore archives generated documents
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Mailer sends an email with an optional attachment
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryService renders invoice and statement documents, archives invoice
// PDFs, and emails them to customers.
type DeliveryService struct {
	invoices     *appinvoicing.InvoiceService
	statements   *report.StatementService
	customerRepo partner.CustomerRepository
	farmRepo     partner.FarmRepository
	pdf          InvoicePDFRenderer
	excel        StatementExcelRenderer
	store        DocumentStore
	mailer       Mailer
	logger       *zap.Logger
}

// NewDeliveryService creates a new DeliveryService. The document store and
// mailer may be nil: archiving is then skipped and email delivery rejected.
func NewDeliveryService(
	invoices *appinvoicing.InvoiceService,
	statements *report.StatementService,
	customerRepo partner.CustomerRepository,
	farmRepo partner.FarmRepository,
	pdf InvoicePDFRenderer,
	excel StatementExcelRenderer,
	store DocumentStore,
	mailer Mailer,
	logger *zap.Logger,
) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{
		invoices:     invoices,
		statements:   statements,
		customerRepo: customerRepo,
		farmRepo:     farmRepo,
		pdf:          pdf,
		excel:        excel,
		store:        store,
		mailer:       mailer,
		logger:       logger,
	}
}

// InvoicePDF renders the invoice as a PDF and archives a copy in the
// document store. Archiving failures do not block the download.
func (s *DeliveryService) InvoicePDF(ctx context.Context, invoiceID uuid.UUID) (*DocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "delivery", "invoice_pdf")
	defer span.End()

	doc, err := s.invoiceDocument(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	data, err := s.pdf.RenderInvoice(*doc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}

	fileName := doc.Invoice.InvoiceNumber + ".pdf"
	if s.store != nil {
		key := "invoices/" + fileName
		if err := s.store.Put(ctx, key, data, "application/pdf"); err != nil {
			s.logger.Warn("Failed to archive invoice PDF",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	return &DocumentResult{
		FileName:    fileName,
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// EmailInvoice renders the invoice PDF and mails it to the customer contact
func (s *DeliveryService) EmailInvoice(ctx context.Context, invoiceID uuid.UUID) (*EmailResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "delivery", "email_invoice")
	defer span.End()

	if s.mailer == nil {
		return nil, shared.NewDomainError("EMAIL_DISABLED", "Email delivery is not configured")
	}

	doc, err := s.invoiceDocument(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if doc.Invoice.CustomerID == nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Invoice has no customer to email")
	}
	customer, err := s.customerRepo.FindByID(ctx, *doc.Invoice.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if customer.Email == "" {
		return nil, shared.NewDomainError("MISSING_EMAIL", "Customer has no contact email on file")
	}

	data, err := s.pdf.RenderInvoice(*doc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}

	msg := Message{
		To:             customer.Email,
		Subject:        fmt.Sprintf("Invoice %s", doc.Invoice.InvoiceNumber),
		Body:           invoiceEmailBody(doc, customer),
		AttachmentName: doc.Invoice.InvoiceNumber + ".pdf",
		Attachment:     data,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to send invoice email: %w", err)
	}

	s.logger.Info("Invoice emailed",
		zap.String("invoice_number", doc.Invoice.InvoiceNumber),
		zap.String("to", customer.Email))

	return &EmailResult{
		InvoiceNumber: doc.Invoice.InvoiceNumber,
		SentTo:        customer.Email,
	}, nil
}

// CustomerStatementExcel renders a customer account statement as XLSX
func (s *DeliveryService) CustomerStatementExcel(ctx context.Context, customerID uuid.UUID, filter report.StatementFilter) (*DocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "delivery", "statement_excel")
	defer span.End()

	stmt, err := s.statements.CustomerStatement(ctx, customerID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	data, err := s.excel.RenderStatement(stmt)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render statement workbook: %w", err)
	}

	return &DocumentResult{
		FileName:    fmt.Sprintf("statement-%s.xlsx", customerID),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

// invoiceDocument loads the invoice with derived figures and resolves the
// trading party names for the document header.
func (s *DeliveryService) invoiceDocument(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDocument, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	doc := &InvoiceDocument{Invoice: *inv}

	if inv.CustomerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, *inv.CustomerID)
		if err != nil {
			return nil, err
		}
		doc.CustomerName = customer.Name
	}
	if inv.FarmID != nil {
		farm, err := s.farmRepo.FindByID(ctx, *inv.FarmID)
		if err != nil {
			return nil, err
		}
		doc.FarmName = farm.Name
	}

	return doc, nil
}

func invoiceEmailBody(doc *InvoiceDocument, customer *partner.Customer) string {
	return fmt.Sprintf(
		"Dear %s,\n\nPlease find attached invoice %s for the shipment flown on %s (AWB %s).\n\nAmount due: %s USD.\n\nBest regards,\nAccounts Receivable",
		customer.Name,
		doc.Invoice.InvoiceNumber,
		doc.Invoice.FlightDate.Format("2006-01-02"),
		doc.Invoice.AWB,
		doc.Invoice.Balance.StringFixed(2),
	)
}
