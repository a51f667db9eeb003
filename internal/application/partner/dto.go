package partner

import (
	"time"

	"github.com/florexport/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Address     string `json:"address"`
	City        string `json:"city" binding:"max=100"`
	Country     string `json:"country" binding:"max=100"`
	TaxID       string `json:"tax_id" binding:"max=50"`
	Notes       string `json:"notes"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactName *string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email,max=200"`
	Address     *string `json:"address"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	TaxID       *string `json:"tax_id" binding:"omitempty,max=50"`
	Notes       *string `json:"notes"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	TaxID       string    `json:"tax_id"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// =============================================================================
// Farm DTOs
// =============================================================================

// CreateFarmRequest represents a request to create a new farm
type CreateFarmRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Address     string `json:"address"`
	City        string `json:"city" binding:"max=100"`
	Country     string `json:"country" binding:"max=100"`
	BankName    string `json:"bank_name" binding:"max=200"`
	BankAccount string `json:"bank_account" binding:"max=50"`
	Notes       string `json:"notes"`
}

// UpdateFarmRequest represents a request to update a farm.
// Nil fields are left unchanged.
type UpdateFarmRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactName *string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email,max=200"`
	Address     *string `json:"address"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	BankName    *string `json:"bank_name" binding:"omitempty,max=200"`
	BankAccount *string `json:"bank_account" binding:"omitempty,max=50"`
	Notes       *string `json:"notes"`
}

// FarmResponse represents a farm in API responses
type FarmResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	BankName    string    `json:"bank_name"`
	BankAccount string    `json:"bank_account"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PartnerListFilter represents filter options for customer and farm lists
type PartnerListFilter struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page,default=1" binding:"min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse converts a customer domain model to a response DTO
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Status:      string(c.Status),
		ContactName: c.ContactName,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		City:        c.City,
		Country:     c.Country,
		TaxID:       c.TaxID,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of customers to response DTOs
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, ToCustomerResponse(&customers[i]))
	}
	return responses
}

// ToFarmResponse converts a farm domain model to a response DTO
func ToFarmResponse(f *partner.Farm) FarmResponse {
	return FarmResponse{
		ID:          f.ID,
		Code:        f.Code,
		Name:        f.Name,
		Status:      string(f.Status),
		ContactName: f.ContactName,
		Phone:       f.Phone,
		Email:       f.Email,
		Address:     f.Address,
		City:        f.City,
		Country:     f.Country,
		BankName:    f.BankName,
		BankAccount: f.BankAccount,
		Notes:       f.Notes,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ToFarmResponses converts a slice of farms to response DTOs
func ToFarmResponses(farms []partner.Farm) []FarmResponse {
	responses := make([]FarmResponse, 0, len(farms))
	for i := range farms {
		responses = append(responses, ToFarmResponse(&farms[i]))
	}
	return responses
}
