package partner

import (
	"context"

	"github.com/florexport/backend/internal/domain/partner"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService exposes the customer use cases behind the HTTP layer.
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// Create registers a new customer. Codes are unique, so a taken code fails
// with ALREADY_EXISTS before the aggregate is built.
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customerRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}

	customer, err := partner.NewCustomer(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := customer.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.Address != "" || req.City != "" || req.Country != "" {
		if err := customer.SetAddress(req.Address, req.City, req.Country); err != nil {
			return nil, err
		}
	}
	if req.TaxID != "" {
		if err := customer.SetTaxID(req.TaxID); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		customer.SetNotes(req.Notes)
	}

	return s.save(ctx, customer)
}

// GetByID looks a customer up by primary key.
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByCode looks a customer up by its business code.
func (s *CustomerService) GetByCode(ctx context.Context, code string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List pages through customers, optionally restricted to active ones.
func (s *CustomerService) List(ctx context.Context, filter PartnerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	find := s.customerRepo.FindAll
	if filter.ActiveOnly {
		find = s.customerRepo.FindActive
	}
	customers, err := find(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCustomerResponses(customers), total, nil
}

// Update applies a partial update. Nil fields keep their current value;
// grouped fields (contact, address) merge with what is stored before the
// domain validation runs.
func (s *CustomerService) Update(ctx context.Context, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := customer.Update(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.ContactName != nil || req.Phone != nil || req.Email != nil {
		contactName := override(req.ContactName, customer.ContactName)
		phone := override(req.Phone, customer.Phone)
		email := override(req.Email, customer.Email)
		if err := customer.SetContact(contactName, phone, email); err != nil {
			return nil, err
		}
	}

	if req.Address != nil || req.City != nil || req.Country != nil {
		address := override(req.Address, customer.Address)
		city := override(req.City, customer.City)
		country := override(req.Country, customer.Country)
		if err := customer.SetAddress(address, city, country); err != nil {
			return nil, err
		}
	}

	if req.TaxID != nil {
		if err := customer.SetTaxID(*req.TaxID); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		customer.SetNotes(*req.Notes)
	}

	return s.save(ctx, customer)
}

// Delete removes a customer outright. Fails with not-found when the ID is
// unknown.
func (s *CustomerService) Delete(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, customerID)
}

// Activate re-enables an inactive customer.
func (s *CustomerService) Activate(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.transition(ctx, customerID, (*partner.Customer).Activate)
}

// Deactivate blocks a customer from new invoicing.
func (s *CustomerService) Deactivate(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.transition(ctx, customerID, (*partner.Customer).Deactivate)
}

func (s *CustomerService) transition(ctx context.Context, customerID uuid.UUID, change func(*partner.Customer) error) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := change(customer); err != nil {
		return nil, err
	}
	return s.save(ctx, customer)
}

func (s *CustomerService) save(ctx context.Context, customer *partner.Customer) (*CustomerResponse, error) {
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

func override(update *string, current string) string {
	if update != nil {
		return *update
	}
	return current
}

func toDomainFilter(filter PartnerListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	return domainFilter
}
