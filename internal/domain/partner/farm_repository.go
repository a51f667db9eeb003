package partner

import (
	"context"

	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FarmRepository defines the interface for farm persistence
type FarmRepository interface {
	// FindByID finds a farm by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Farm, error)

	// FindByCode finds a farm by its code
	FindByCode(ctx context.Context, code string) (*Farm, error)

	// FindAll finds all farms matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Farm, error)

	// FindActive finds all active farms
	FindActive(ctx context.Context, filter shared.Filter) ([]Farm, error)

	// Save creates or updates a farm
	Save(ctx context.Context, farm *Farm) error

	// Delete deletes a farm
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts farms matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a farm with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
