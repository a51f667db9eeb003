package persistence

import (
	"context"

	"github.com/florexport/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormUnitOfWork implements shared.UnitOfWork on top of a GORM transaction.
// The transaction handle travels in the context, so the repositories in this
// package pick it up transparently through dbFor.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// InTransaction runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back when it returns an error.
func (u *GormUnitOfWork) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFor returns the transaction stashed in ctx by InTransaction, or the
// repository's own handle when no transaction is open.
func dbFor(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return base.WithContext(ctx)
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ shared.UnitOfWork = (*GormUnitOfWork)(nil)
