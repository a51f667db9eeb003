package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/florexport/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := dbFor(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := dbFor(ctx, r.db).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyInvoiceFilter(dbFor(ctx, r.db).Model(&models.InvoiceModel{}), filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindByCustomer finds invoices for a customer
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := dbFor(ctx, r.db).Model(&models.InvoiceModel{}).
		Where("customer_id = ?", customerID)
	query = r.applyInvoiceFilter(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindByFarm finds invoices for a farm
func (r *GormInvoiceRepository) FindByFarm(ctx context.Context, farmID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := dbFor(ctx, r.db).Model(&models.InvoiceModel{}).
		Where("farm_id = ?", farmID)
	query = r.applyInvoiceFilter(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return dbFor(ctx, r.db).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := dbFor(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	query := dbFor(ctx, r.db).Model(&models.InvoiceModel{})
	query = r.applyInvoiceFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByInvoiceNumber checks if an invoice number is taken
func (r *GormInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := dbFor(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateInvoiceNumber generates a unique invoice number
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	return generateSequentialNumber(ctx, r.db, &models.InvoiceModel{}, "invoice_number", "INV")
}

// applyInvoiceFilter applies filter options to the query
func (r *GormInvoiceRepository) applyInvoiceFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	query = r.applyInvoiceFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("flight_date DESC")
	}

	return query
}

// applyInvoiceFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyInvoiceFilterWithoutPagination(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR awb ILIKE ?", searchPattern, searchPattern)
	}

	// Apply specific filters
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.FarmID != nil {
		query = query.Where("farm_id = ?", *filter.FarmID)
	}
	if filter.FlightFrom != nil {
		query = query.Where("flight_date >= ?", *filter.FlightFrom)
	}
	if filter.FlightTo != nil {
		query = query.Where("flight_date <= ?", *filter.FlightTo)
	}

	return query
}

// generateSequentialNumber produces the next PREFIX-YYYYMMDD-XXXXX document
// number by scanning the highest number issued today for the given column.
func generateSequentialNumber(ctx context.Context, db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	date := time.Now().Format("20060102")
	fullPrefix := fmt.Sprintf("%s-%s-", prefix, date)

	var maxNumber string
	if err := dbFor(ctx, db).
		Model(model).
		Select(column).
		Where(column+" LIKE ?", fullPrefix+"%").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", fullPrefix, nextNum), nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
