package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUnitOfWork_InTransaction(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		uow := NewGormUnitOfWork(gormDB)
		repo := NewGormInvoiceRepository(gormDB)
		invoiceID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnRows(invoiceRows(invoiceID, "INV-20260830-00001"))
		mock.ExpectCommit()

		err := uow.InTransaction(context.Background(), func(ctx context.Context) error {
			_, err := repo.FindByID(ctx, invoiceID)
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back every write when the function fails", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		uow := NewGormUnitOfWork(gormDB)
		repo := NewGormPaymentRepository(gormDB)
		paymentID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "payments" WHERE id = \$1`).
			WithArgs(paymentID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		failure := errors.New("status update lost the version race")
		err := uow.InTransaction(context.Background(), func(ctx context.Context) error {
			if err := repo.Delete(ctx, paymentID); err != nil {
				return err
			}
			return failure
		})

		require.ErrorIs(t, err, failure)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repository outside a transaction uses the base connection", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		repo := NewGormInvoiceRepository(gormDB)
		invoiceID := uuid.New()

		// No ExpectBegin: the read must not open a transaction on its own.
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnRows(invoiceRows(invoiceID, "INV-20260830-00001"))

		_, err := repo.FindByID(context.Background(), invoiceID)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
