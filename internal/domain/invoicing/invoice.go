package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceType represents which side of the trade an invoice documents
type InvoiceType string

const (
	InvoiceTypeSale     InvoiceType = "SALE"     // Billed to a customer at sale prices
	InvoiceTypePurchase InvoiceType = "PURCHASE" // Owed to a farm at purchase prices
	InvoiceTypeBoth     InvoiceType = "BOTH"     // Same shipment billed and payable; priced at sale prices
)

// IsValid checks if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypeSale, InvoiceTypePurchase, InvoiceTypeBoth:
		return true
	}
	return false
}

// String returns the string representation of InvoiceType
func (t InvoiceType) String() string {
	return string(t)
}

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING" // Outstanding, within the payment term
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE" // Outstanding past flight date + payment term
	InvoiceStatusPaid    InvoiceStatus = "PAID"    // Balance settled (within the paid threshold)
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusOverdue, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// PaymentTermDays is the number of days after the flight date before an
// unpaid invoice becomes overdue.
const PaymentTermDays = 30

// PaidThreshold is the residual balance below which an invoice counts as
// fully paid. Absorbs currency rounding from per-bunch arithmetic.
var PaidThreshold = decimal.NewFromFloat(0.01)

// StatusFor derives the invoice status from an outstanding balance and the
// flight date at the given instant.
func StatusFor(balance decimal.Decimal, flightDate time.Time, now time.Time) InvoiceStatus {
	if balance.LessThanOrEqual(PaidThreshold) {
		return InvoiceStatusPaid
	}
	if now.After(flightDate.AddDate(0, 0, PaymentTermDays)) {
		return InvoiceStatusOverdue
	}
	return InvoiceStatusPending
}

// Charge computes the amount owed on an invoice: line subtotal reduced by
// credit notes and increased by debit notes.
func Charge(subtotal, creditsTotal, debitsTotal decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(creditsTotal).Add(debitsTotal)
}

// Bunch is a priced bundle of stems within an invoice line.
// Sale and purchase prices are both carried so that BOTH-type shipments can
// be valued from either side.
type Bunch struct {
	Quantity      int             `json:"quantity"`
	StemsPerBunch int             `json:"stems_per_bunch"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// Amount returns the bunch line amount using the price field selected by the
// invoice type.
func (b Bunch) Amount(invoiceType InvoiceType) decimal.Decimal {
	price := b.SalePrice
	if invoiceType == InvoiceTypePurchase {
		price = b.PurchasePrice
	}
	return price.Mul(decimal.NewFromInt(int64(b.Quantity)))
}

// InvoiceItem is one flower line on an invoice
type InvoiceItem struct {
	Variety  string  `json:"variety"`
	BoxCount int     `json:"box_count"`
	Bunches  []Bunch `json:"bunches"`
}

// Amount returns the item total for the given invoice type
func (it InvoiceItem) Amount(invoiceType InvoiceType) decimal.Decimal {
	total := decimal.Zero
	for _, b := range it.Bunches {
		total = total.Add(b.Amount(invoiceType))
	}
	return total
}

// InvoiceItems is a slice of InvoiceItem that implements GORM Scanner/Valuer
// for JSONB storage
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*items = InvoiceItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = InvoiceItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}

// Invoice represents a sale or purchase invoice aggregate root.
// Line items and header fields are immutable after creation except through
// ReplaceItems (allowed only before any payment); status is the single
// payment-mutable field.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string        `json:"invoice_number"`
	Type          InvoiceType   `json:"type"`
	CustomerID    *uuid.UUID    `json:"customer_id"` // Buyer; required unless PURCHASE
	FarmID        *uuid.UUID    `json:"farm_id"`     // Grower; required unless SALE
	AWB           string        `json:"awb"`         // Air waybill number
	FlightDate    time.Time     `json:"flight_date"` // Due-date basis
	Items         InvoiceItems  `json:"items"`
	Status        InvoiceStatus `json:"status"`
	Remark        string        `json:"remark"`
}

// NewInvoice creates a new invoice
func NewInvoice(
	invoiceNumber string,
	invoiceType InvoiceType,
	customerID *uuid.UUID,
	farmID *uuid.UUID,
	awb string,
	flightDate time.Time,
	items []InvoiceItem,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type is not valid")
	}
	if invoiceType != InvoiceTypePurchase && (customerID == nil || *customerID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required for sale invoices")
	}
	if invoiceType != InvoiceTypeSale && (farmID == nil || *farmID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_FARM", "Farm is required for purchase invoices")
	}
	if flightDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_FLIGHT_DATE", "Flight date is required")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		Type:              invoiceType,
		CustomerID:        customerID,
		FarmID:            farmID,
		AWB:               awb,
		FlightDate:        flightDate,
		Items:             items,
		Status:            InvoiceStatusPending,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

func validateItems(items []InvoiceItem) error {
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Invoice requires at least one line item")
	}
	for i, item := range items {
		if item.Variety == "" {
			return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d: variety cannot be empty", i))
		}
		if len(item.Bunches) == 0 {
			return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d: at least one bunch is required", i))
		}
		for j, b := range item.Bunches {
			if b.Quantity <= 0 {
				return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d bunch %d: quantity must be positive", i, j))
			}
			if b.SalePrice.IsNegative() || b.PurchasePrice.IsNegative() {
				return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d bunch %d: prices cannot be negative", i, j))
			}
		}
	}
	return nil
}

// Subtotal computes the invoice line total using the price field selected by
// the invoice type (purchase price for PURCHASE invoices, sale price otherwise).
func (inv *Invoice) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.Amount(inv.Type))
	}
	return total
}

// RefreshStatus re-derives the status from the given outstanding balance.
// Returns true if the status changed.
func (inv *Invoice) RefreshStatus(balance decimal.Decimal, now time.Time) bool {
	next := StatusFor(balance, inv.FlightDate, now)
	if next == inv.Status {
		return false
	}
	previous := inv.Status
	inv.Status = next
	inv.UpdatedAt = now
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, previous))
	return true
}

// ReplaceItems replaces the line items. Only allowed while no payment has been
// recorded against the invoice; the caller supplies hasPayments from the
// payment store.
func (inv *Invoice) ReplaceItems(items []InvoiceItem, hasPayments bool) error {
	if hasPayments {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot change line items after payments have been recorded")
	}
	if err := validateItems(items); err != nil {
		return err
	}
	inv.Items = items
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// SetRemark sets the free-text remark
func (inv *Invoice) SetRemark(remark string) {
	inv.Remark = remark
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// DueDate returns when payment is expected (flight date + payment term)
func (inv *Invoice) DueDate() time.Time {
	return inv.FlightDate.AddDate(0, 0, PaymentTermDays)
}

// IsOverdue returns true if the invoice is past its due date and not paid
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status != InvoiceStatusPaid && now.After(inv.DueDate())
}

// DaysOverdue returns the number of days past due (0 if not overdue)
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !inv.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(inv.DueDate()).Hours() / 24)
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// StemCount returns the total number of stems on the invoice
func (inv *Invoice) StemCount() int {
	total := 0
	for _, item := range inv.Items {
		for _, b := range item.Bunches {
			total += b.Quantity * b.StemsPerBunch
		}
	}
	return total
}
