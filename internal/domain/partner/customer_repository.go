package partner

import (
	"context"

	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository persists Customer aggregates. FindByID and FindByCode
// return shared.ErrNotFound when no row matches.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByCode(ctx context.Context, code string) (*Customer, error)

	// FindAll lists customers matching the filter; FindActive restricts the
	// result to active ones.
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	FindActive(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save inserts or updates the customer.
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByCode reports whether the code is already taken.
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
