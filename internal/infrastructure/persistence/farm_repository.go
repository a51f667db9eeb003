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

// GormFarmRepository implements FarmRepository using GORM
type GormFarmRepository struct {
	db *gorm.DB
}

// NewGormFarmRepository creates a new GormFarmRepository
func NewGormFarmRepository(db *gorm.DB) *GormFarmRepository {
	return &GormFarmRepository{db: db}
}

// FindByID finds a farm by its ID
func (r *GormFarmRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Farm, error) {
	var farm partner.Farm
	if err := dbFor(ctx, r.db).First(&farm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &farm, nil
}

// FindByCode finds a farm by its code
func (r *GormFarmRepository) FindByCode(ctx context.Context, code string) (*partner.Farm, error) {
	var farm partner.Farm
	if err := dbFor(ctx, r.db).
		Where("code = ?", strings.ToUpper(code)).
		First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &farm, nil
}

// FindAll finds all farms matching the filter
func (r *GormFarmRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Farm, error) {
	var farms []partner.Farm
	query := applyPartnerFilter(dbFor(ctx, r.db).Model(&partner.Farm{}), filter)

	if err := query.Find(&farms).Error; err != nil {
		return nil, err
	}
	return farms, nil
}

// FindActive finds all active farms
func (r *GormFarmRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Farm, error) {
	var farms []partner.Farm
	query := applyPartnerFilter(
		dbFor(ctx, r.db).Model(&partner.Farm{}).
			Where("status = ?", partner.FarmStatusActive),
		filter,
	)

	if err := query.Find(&farms).Error; err != nil {
		return nil, err
	}
	return farms, nil
}

// Save creates or updates a farm
func (r *GormFarmRepository) Save(ctx context.Context, farm *partner.Farm) error {
	return dbFor(ctx, r.db).Save(farm).Error
}

// Delete deletes a farm
func (r *GormFarmRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&partner.Farm{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts farms matching the filter
func (r *GormFarmRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyPartnerSearch(dbFor(ctx, r.db).Model(&partner.Farm{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a farm with the given code exists
func (r *GormFarmRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := dbFor(ctx, r.db).
		Model(&partner.Farm{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormFarmRepository implements FarmRepository
var _ partner.FarmRepository = (*GormFarmRepository)(nil)
