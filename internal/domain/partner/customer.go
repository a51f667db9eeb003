package partner

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/florexport/backend/internal/domain/shared"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is a wholesale flower buyer, the aggregate root on the
// receivables side. Codes are stored upper-cased and must be unique.
type Customer struct {
	shared.BaseAggregateRoot
	Code        string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string         `gorm:"type:varchar(200);not null"`
	Status      CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName string         `gorm:"type:varchar(100)"`
	Phone       string         `gorm:"type:varchar(50);index"`
	Email       string         `gorm:"type:varchar(200);index"`
	Address     string         `gorm:"type:text"`
	City        string         `gorm:"type:varchar(100)"`
	Country     string         `gorm:"type:varchar(100)"`
	TaxID       string         `gorm:"type:varchar(50)"`
	Notes       string         `gorm:"type:text"`
}

func (Customer) TableName() string {
	return "customers"
}

// NewCustomer builds an active customer and records the created event.
func NewCustomer(code, name string) (*Customer, error) {
	if err := validatePartnerCode(code); err != nil {
		return nil, err
	}
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            CustomerStatusActive,
	}
	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))
	return customer, nil
}

// touch bumps the modification timestamp and the optimistic-lock version.
func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Update renames the customer.
func (c *Customer) Update(name string) error {
	if err := validatePartnerName(name); err != nil {
		return err
	}
	c.Name = name
	c.touch()
	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// SetContact replaces the contact person, phone and email together.
func (c *Customer) SetContact(contactName, phone, email string) error {
	if err := maxLen(contactName, 100, "INVALID_CONTACT_NAME", "Contact name"); err != nil {
		return err
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	c.ContactName = contactName
	c.Phone = phone
	c.Email = email
	c.touch()
	return nil
}

// SetAddress replaces the postal address fields together.
func (c *Customer) SetAddress(address, city, country string) error {
	if err := maxLen(address, 500, "INVALID_ADDRESS", "Address"); err != nil {
		return err
	}
	if err := maxLen(city, 100, "INVALID_CITY", "City"); err != nil {
		return err
	}
	if err := maxLen(country, 100, "INVALID_COUNTRY", "Country"); err != nil {
		return err
	}

	c.Address = address
	c.City = city
	c.Country = country
	c.touch()
	return nil
}

// SetTaxID replaces the tax identification number.
func (c *Customer) SetTaxID(taxID string) error {
	if err := maxLen(taxID, 50, "INVALID_TAX_ID", "Tax ID"); err != nil {
		return err
	}
	c.TaxID = taxID
	c.touch()
	return nil
}

// SetNotes replaces the free-form notes.
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.touch()
}

// Activate moves an inactive customer back to active.
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}
	c.Status = CustomerStatusActive
	c.touch()
	return nil
}

// Deactivate blocks the customer from new invoices without deleting history.
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}
	c.Status = CustomerStatusInactive
	c.touch()
	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func maxLen(value string, limit int, code, field string) error {
	if value != "" && len(value) > limit {
		return shared.NewDomainError(code, fmt.Sprintf("%s cannot exceed %d characters", field, limit))
	}
	return nil
}

func validatePartnerCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validatePartnerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	return maxLen(name, 200, "INVALID_NAME", "Name")
}

func validatePhone(phone string) error {
	if err := maxLen(phone, 50, "INVALID_PHONE", "Phone number"); err != nil {
		return err
	}
	if !phonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if err := maxLen(email, 200, "INVALID_EMAIL", "Email"); err != nil {
		return err
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
