package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/florexport/backend/internal/domain/partner"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository persists customer aggregates. Partner aggregates
// carry their own GORM tags, so rows map straight onto the domain type
// without a separate model.
type GormCustomerRepository struct {
	db *gorm.DB
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID loads one customer, translating gorm's not-found into
// shared.ErrNotFound.
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := dbFor(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByCode looks a customer up by its code. Codes are stored upper-cased,
// so the lookup normalizes first.
func (r *GormCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	var customer partner.Customer
	err := dbFor(ctx, r.db).
		Where("code = ?", strings.ToUpper(code)).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAll lists customers matching the filter.
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	return r.list(ctx, filter, nil)
}

// FindActive lists customers that can still receive invoices.
func (r *GormCustomerRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", partner.CustomerStatusActive)
	})
}

func (r *GormCustomerRepository) list(ctx context.Context, filter shared.Filter, scope func(*gorm.DB) *gorm.DB) ([]partner.Customer, error) {
	query := dbFor(ctx, r.db).Model(&partner.Customer{})
	if scope != nil {
		query = scope(query)
	}

	var customers []partner.Customer
	if err := applyPartnerFilter(query, filter).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Save inserts or updates the customer row.
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return dbFor(ctx, r.db).Save(customer).Error
}

// Delete removes the customer, returning shared.ErrNotFound when no row
// matched.
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&partner.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count reports how many customers match the filter's search term.
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyPartnerSearch(dbFor(ctx, r.db).Model(&partner.Customer{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode reports whether a customer already claimed the code.
func (r *GormCustomerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&partner.Customer{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyPartnerFilter layers search, pagination and ordering onto a partner
// query. Shared with the farm repository.
func applyPartnerFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyPartnerSearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if filter.OrderBy == "" {
		return query.Order("name ASC")
	}
	dir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		dir = "DESC"
	}
	return query.Order(filter.OrderBy + " " + dir)
}

// applyPartnerSearch matches the term against name, code and contact.
func applyPartnerSearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := "%" + filter.Search + "%"
	return query.Where("name ILIKE ? OR code ILIKE ? OR contact_name ILIKE ?", pattern, pattern, pattern)
}
