package persistence

import (
	"context"
	"errors"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Payment, error) {
	var model models.PaymentModel
	if err := dbFor(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice finds all payments recorded against an invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := dbFor(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]invoicing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// FindByBulkID finds all payments recorded by one bulk allocation
func (r *GormPaymentRepository) FindByBulkID(ctx context.Context, bulkID uuid.UUID) ([]invoicing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := dbFor(ctx, r.db).
		Where("bulk_id = ?", bulkID).
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]invoicing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// Save creates a payment record
func (r *GormPaymentRepository) Save(ctx context.Context, payment *invoicing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return dbFor(ctx, r.db).Save(model).Error
}

// Delete removes a payment record
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByInvoice reports whether any payment references the invoice
func (r *GormPaymentRepository) ExistsByInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	var count int64
	if err := dbFor(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GeneratePaymentNumber generates a unique payment number
func (r *GormPaymentRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	return generateSequentialNumber(ctx, r.db, &models.PaymentModel{}, "payment_number", "PAY")
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ invoicing.PaymentRepository = (*GormPaymentRepository)(nil)
