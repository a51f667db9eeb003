package partner

import (
	"context"

	"github.com/florexport/backend/internal/domain/partner"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FarmService handles farm-related business operations
type FarmService struct {
	farmRepo partner.FarmRepository
}

// NewFarmService creates a new FarmService
func NewFarmService(farmRepo partner.FarmRepository) *FarmService {
	return &FarmService{
		farmRepo: farmRepo,
	}
}

// Create creates a new farm
func (s *FarmService) Create(ctx context.Context, req CreateFarmRequest) (*FarmResponse, error) {
	exists, err := s.farmRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Farm with this code already exists")
	}

	farm, err := partner.NewFarm(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := farm.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.Address != "" || req.City != "" || req.Country != "" {
		if err := farm.SetAddress(req.Address, req.City, req.Country); err != nil {
			return nil, err
		}
	}
	if req.BankName != "" || req.BankAccount != "" {
		if err := farm.SetBankDetails(req.BankName, req.BankAccount); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		farm.SetNotes(req.Notes)
	}

	if err := s.farmRepo.Save(ctx, farm); err != nil {
		return nil, err
	}

	response := ToFarmResponse(farm)
	return &response, nil
}

// GetByID retrieves a farm by ID
func (s *FarmService) GetByID(ctx context.Context, farmID uuid.UUID) (*FarmResponse, error) {
	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return nil, err
	}

	response := ToFarmResponse(farm)
	return &response, nil
}

// GetByCode retrieves a farm by code
func (s *FarmService) GetByCode(ctx context.Context, code string) (*FarmResponse, error) {
	farm, err := s.farmRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	response := ToFarmResponse(farm)
	return &response, nil
}

// List retrieves a list of farms with filtering and pagination
func (s *FarmService) List(ctx context.Context, filter PartnerListFilter) ([]FarmResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	var farms []partner.Farm
	var err error
	if filter.ActiveOnly {
		farms, err = s.farmRepo.FindActive(ctx, domainFilter)
	} else {
		farms, err = s.farmRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.farmRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToFarmResponses(farms), total, nil
}

// Update updates a farm
func (s *FarmService) Update(ctx context.Context, farmID uuid.UUID, req UpdateFarmRequest) (*FarmResponse, error) {
	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := farm.Update(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.ContactName != nil || req.Phone != nil || req.Email != nil {
		contactName := farm.ContactName
		phone := farm.Phone
		email := farm.Email
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := farm.SetContact(contactName, phone, email); err != nil {
			return nil, err
		}
	}

	if req.Address != nil || req.City != nil || req.Country != nil {
		address := farm.Address
		city := farm.City
		country := farm.Country
		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if req.Country != nil {
			country = *req.Country
		}
		if err := farm.SetAddress(address, city, country); err != nil {
			return nil, err
		}
	}

	if req.BankName != nil || req.BankAccount != nil {
		bankName := farm.BankName
		bankAccount := farm.BankAccount
		if req.BankName != nil {
			bankName = *req.BankName
		}
		if req.BankAccount != nil {
			bankAccount = *req.BankAccount
		}
		if err := farm.SetBankDetails(bankName, bankAccount); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		farm.SetNotes(*req.Notes)
	}

	if err := s.farmRepo.Save(ctx, farm); err != nil {
		return nil, err
	}

	response := ToFarmResponse(farm)
	return &response, nil
}

// Delete deletes a farm
func (s *FarmService) Delete(ctx context.Context, farmID uuid.UUID) error {
	if _, err := s.farmRepo.FindByID(ctx, farmID); err != nil {
		return err
	}

	return s.farmRepo.Delete(ctx, farmID)
}

// Activate activates a farm
func (s *FarmService) Activate(ctx context.Context, farmID uuid.UUID) (*FarmResponse, error) {
	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return nil, err
	}

	if err := farm.Activate(); err != nil {
		return nil, err
	}

	if err := s.farmRepo.Save(ctx, farm); err != nil {
		return nil, err
	}

	response := ToFarmResponse(farm)
	return &response, nil
}

// Deactivate deactivates a farm
func (s *FarmService) Deactivate(ctx context.Context, farmID uuid.UUID) (*FarmResponse, error) {
	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return nil, err
	}

	if err := farm.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.farmRepo.Save(ctx, farm); err != nil {
		return nil, err
	}

	response := ToFarmResponse(farm)
	return &response, nil
}
