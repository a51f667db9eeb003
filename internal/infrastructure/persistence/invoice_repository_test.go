package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/florexport/backend/internal/domain/invoicing"
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM DB backed by a mocked SQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func invoiceRows(id uuid.UUID, number string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version",
		"invoice_number", "type", "customer_id", "farm_id", "awb", "flight_date", "items", "status", "remark",
	}).AddRow(
		id, now, now, 1,
		number, "SALE", uuid.New(), nil, "729-12345675", now, []byte(`[]`), "PENDING", "",
	)
}

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("finds existing invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnRows(invoiceRows(invoiceID, "INV-20260830-00001"))

		invoice, err := repo.FindByID(context.Background(), invoiceID)

		assert.NoError(t, err)
		assert.NotNil(t, invoice)
		assert.Equal(t, invoiceID, invoice.ID)
		assert.Equal(t, "INV-20260830-00001", invoice.InvoiceNumber)
		assert.Equal(t, invoicing.InvoiceTypeSale, invoice.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		invoice, err := repo.FindByID(context.Background(), invoiceID)

		assert.Error(t, err)
		assert.Nil(t, invoice)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindByInvoiceNumber(t *testing.T) {
	t.Run("finds invoice by number", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE invoice_number = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("INV-20260830-00042", 1).
			WillReturnRows(invoiceRows(invoiceID, "INV-20260830-00042"))

		invoice, err := repo.FindByInvoiceNumber(context.Background(), "INV-20260830-00042")

		assert.NoError(t, err)
		assert.NotNil(t, invoice)
		assert.Equal(t, "INV-20260830-00042", invoice.InvoiceNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	t.Run("saves when version matches", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoice := newPersistedInvoice(t)
		invoice.IncrementVersion()

		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), invoice)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when version is stale", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoice := newPersistedInvoice(t)
		invoice.IncrementVersion()

		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), invoice)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Delete(t *testing.T) {
	t.Run("deletes existing invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()

		mock.ExpectExec(`DELETE FROM "invoices" WHERE id = \$1`).
			WithArgs(invoiceID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), invoiceID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()

		mock.ExpectExec(`DELETE FROM "invoices" WHERE id = \$1`).
			WithArgs(invoiceID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), invoiceID)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Count(t *testing.T) {
	t.Run("counts invoices with status filter", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		status := invoicing.InvoiceStatusOverdue

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE status = \$1`).
			WithArgs(status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := repo.Count(context.Background(), invoicing.InvoiceFilter{Status: &status})

		assert.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_ExistsByInvoiceNumber(t *testing.T) {
	t.Run("returns true when number is taken", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE invoice_number = \$1`).
			WithArgs("INV-20260830-00001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByInvoiceNumber(context.Background(), "INV-20260830-00001")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_GenerateInvoiceNumber(t *testing.T) {
	t.Run("starts at one when no invoices exist today", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		prefix := fmt.Sprintf("INV-%s-", time.Now().Format("20060102"))

		mock.ExpectQuery(`SELECT "invoice_number" FROM "invoices" WHERE invoice_number LIKE \$1 ORDER BY invoice_number DESC LIMIT .*`).
			WithArgs(prefix+"%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"invoice_number"}))

		number, err := repo.GenerateInvoiceNumber(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00001", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the highest number issued today", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		prefix := fmt.Sprintf("INV-%s-", time.Now().Format("20060102"))

		mock.ExpectQuery(`SELECT "invoice_number" FROM "invoices" WHERE invoice_number LIKE \$1 ORDER BY invoice_number DESC LIMIT .*`).
			WithArgs(prefix+"%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"invoice_number"}).AddRow(prefix + "00017"))

		number, err := repo.GenerateInvoiceNumber(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00018", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements InvoiceRepository interface", func(t *testing.T) {
		gormDB, _, mockDB := newMockDB(t)
		defer mockDB.Close()

		var _ invoicing.InvoiceRepository = NewGormInvoiceRepository(gormDB)
	})
}

// newPersistedInvoice builds a valid invoice the way the application layer
// would hand it to the repository.
func newPersistedInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	customerID := uuid.New()
	invoice, err := invoicing.NewInvoice(
		"INV-20260830-00001",
		invoicing.InvoiceTypeSale,
		&customerID,
		nil,
		"729-12345675",
		time.Now().AddDate(0, 0, -2),
		[]invoicing.InvoiceItem{
			{
				Variety:  "Freedom",
				BoxCount: 4,
				Bunches: []invoicing.Bunch{
					{Quantity: 40, StemsPerBunch: 25, SalePrice: decimalFromString(t, "6.50"), PurchasePrice: decimalFromString(t, "4.25")},
				},
			},
		},
	)
	require.NoError(t, err)
	return invoice
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
