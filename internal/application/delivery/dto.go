package delivery

import (
	appinvoicing "github.com/florexport/backend/internal/application/invoicing"
)

// InvoiceDocument is the data rendered onto an invoice PDF: the invoice with
// its derived figures plus the resolved trading party names.
type InvoiceDocument struct {
	Invoice      appinvoicing.InvoiceResponse
	CustomerName string
	FarmName     string
}

// DocumentResult is a rendered document ready to be served as a download
type DocumentResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// EmailResult reports a successful invoice email delivery
type EmailResult struct {
	InvoiceNumber string `json:"invoice_number"`
	SentTo        string `json:"sent_to"`
}

// Message is an outbound email with an optional attachment
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}
