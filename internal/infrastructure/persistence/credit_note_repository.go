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

// GormCreditNoteRepository implements CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByID finds a credit note by its ID
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.CreditNote, error) {
	var model models.CreditNoteModel
	if err := dbFor(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice finds all credit notes referencing an invoice
func (r *GormCreditNoteRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.CreditNote, error) {
	var noteModels []models.CreditNoteModel
	if err := dbFor(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}
	notes := make([]invoicing.CreditNote, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// Save creates a credit note
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *invoicing.CreditNote) error {
	model := models.CreditNoteModelFromDomain(note)
	return dbFor(ctx, r.db).Save(model).Error
}

// Delete removes a credit note
func (r *GormCreditNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&models.CreditNoteModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateNoteNumber generates a unique credit note number
func (r *GormCreditNoteRepository) GenerateNoteNumber(ctx context.Context) (string, error) {
	return generateSequentialNumber(ctx, r.db, &models.CreditNoteModel{}, "note_number", "CN")
}

// Ensure GormCreditNoteRepository implements CreditNoteRepository
var _ invoicing.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
