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

// GormDebitNoteRepository implements DebitNoteRepository using GORM
type GormDebitNoteRepository struct {
	db *gorm.DB
}

// NewGormDebitNoteRepository creates a new GormDebitNoteRepository
func NewGormDebitNoteRepository(db *gorm.DB) *GormDebitNoteRepository {
	return &GormDebitNoteRepository{db: db}
}

// FindByID finds a debit note by its ID
func (r *GormDebitNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.DebitNote, error) {
	var model models.DebitNoteModel
	if err := dbFor(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice finds all debit notes referencing an invoice
func (r *GormDebitNoteRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.DebitNote, error) {
	var noteModels []models.DebitNoteModel
	if err := dbFor(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}
	notes := make([]invoicing.DebitNote, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// Save creates a debit note
func (r *GormDebitNoteRepository) Save(ctx context.Context, note *invoicing.DebitNote) error {
	model := models.DebitNoteModelFromDomain(note)
	return dbFor(ctx, r.db).Save(model).Error
}

// Delete removes a debit note
func (r *GormDebitNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&models.DebitNoteModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateNoteNumber generates a unique debit note number
func (r *GormDebitNoteRepository) GenerateNoteNumber(ctx context.Context) (string, error) {
	return generateSequentialNumber(ctx, r.db, &models.DebitNoteModel{}, "note_number", "DN")
}

// Ensure GormDebitNoteRepository implements DebitNoteRepository
var _ invoicing.DebitNoteRepository = (*GormDebitNoteRepository)(nil)
