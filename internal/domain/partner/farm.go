package partner

import (
	"strings"
	"time"

	"github.com/florexport/backend/internal/domain/shared"
)

// FarmStatus represents the status of a farm
type FarmStatus string

const (
	FarmStatusActive   FarmStatus = "active"
	FarmStatusInactive FarmStatus = "inactive"
)

// Farm is a grower that supplies flowers for export. It is the aggregate
// root for farm-related operations.
type Farm struct {
	shared.BaseAggregateRoot
	Code        string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Status      FarmStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName string     `gorm:"type:varchar(100)"`
	Phone       string     `gorm:"type:varchar(50);index"`
	Email       string     `gorm:"type:varchar(200);index"`
	Address     string     `gorm:"type:text"`
	City        string     `gorm:"type:varchar(100)"`
	Country     string     `gorm:"type:varchar(100)"`
	BankName    string     `gorm:"type:varchar(200)"`
	BankAccount string     `gorm:"type:varchar(100)"`
	Notes       string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Farm) TableName() string {
	return "farms"
}

// NewFarm creates a new farm with required fields
func NewFarm(code, name string) (*Farm, error) {
	if err := validatePartnerCode(code); err != nil {
		return nil, err
	}
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}

	farm := &Farm{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            FarmStatusActive,
	}

	farm.AddDomainEvent(NewFarmCreatedEvent(farm))

	return farm, nil
}

// Update updates the farm's basic information
func (f *Farm) Update(name string) error {
	if err := validatePartnerName(name); err != nil {
		return err
	}

	f.Name = name
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.AddDomainEvent(NewFarmUpdatedEvent(f))

	return nil
}

// SetContact sets the farm's contact information
func (f *Farm) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
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

	f.ContactName = contactName
	f.Phone = phone
	f.Email = email
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// SetAddress sets the farm's address information
func (f *Farm) SetAddress(address, city, country string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	if city != "" && len(city) > 100 {
		return shared.NewDomainError("INVALID_CITY", "City cannot exceed 100 characters")
	}
	if country != "" && len(country) > 100 {
		return shared.NewDomainError("INVALID_COUNTRY", "Country cannot exceed 100 characters")
	}

	f.Address = address
	f.City = city
	f.Country = country
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// SetBankDetails sets the account purchase payments are sent to
func (f *Farm) SetBankDetails(bankName, bankAccount string) error {
	if bankName != "" && len(bankName) > 200 {
		return shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot exceed 200 characters")
	}
	if bankAccount != "" && len(bankAccount) > 100 {
		return shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account cannot exceed 100 characters")
	}

	f.BankName = bankName
	f.BankAccount = bankAccount
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// SetNotes sets the farm's notes
func (f *Farm) SetNotes(notes string) {
	f.Notes = notes
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// Activate activates the farm
func (f *Farm) Activate() error {
	if f.Status == FarmStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Farm is already active")
	}

	f.Status = FarmStatusActive
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// Deactivate deactivates the farm
func (f *Farm) Deactivate() error {
	if f.Status == FarmStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Farm is already inactive")
	}

	f.Status = FarmStatusInactive
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// IsActive returns true if the farm is active
func (f *Farm) IsActive() bool {
	return f.Status == FarmStatusActive
}
