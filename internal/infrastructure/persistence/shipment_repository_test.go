package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockShipmentRepository creates a GormShipmentRepository with a mocked SQL connection
func newMockShipmentRepository(t *testing.T) (*GormShipmentRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormShipmentRepository(gormDB), mock, mockDB
}

func TestNewGormShipmentRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormShipmentRepository_FindByID(t *testing.T) {
	t.Run("finds existing shipment", func(t *testing.T) {
		repo, mock, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		shipmentID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "shipment_code", "carrier_name", "currency", "status", "invoice_status"}).
			AddRow(shipmentID, 1, "SHP-1001", "Purolator", "USD", "in_transit", "uninvoiced")

		mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(shipmentID, 1).
			WillReturnRows(rows)

		sh, err := repo.FindByID(context.Background(), shipmentID)

		assert.NoError(t, err)
		assert.NotNil(t, sh)
		assert.Equal(t, shipmentID, sh.ID)
		assert.Equal(t, "SHP-1001", sh.ShipmentCode)
		assert.Equal(t, shipment.InvoiceStatusUninvoiced, sh.InvoiceStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing shipment", func(t *testing.T) {
		repo, mock, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		shipmentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(shipmentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		sh, err := repo.FindByID(context.Background(), shipmentID)

		assert.Nil(t, sh)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormShipmentRepository_FindByCode(t *testing.T) {
	t.Run("finds shipment by external code", func(t *testing.T) {
		repo, mock, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		shipmentID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "shipment_code", "currency", "status", "invoice_status"}).
			AddRow(shipmentID, 2, "SHP-2042", "USD", "delivered", "ready_to_invoice")

		mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE shipment_code = \$1 ORDER BY created_at asc,.* LIMIT .*`).
			WithArgs("SHP-2042", 1).
			WillReturnRows(rows)

		sh, err := repo.FindByCode(context.Background(), "SHP-2042")

		assert.NoError(t, err)
		require.NotNil(t, sh)
		assert.Equal(t, "SHP-2042", sh.ShipmentCode)
		assert.Equal(t, 2, sh.GetVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown code", func(t *testing.T) {
		repo, mock, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE shipment_code = \$1 ORDER BY created_at asc,.* LIMIT .*`).
			WithArgs("SHP-NOPE", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		sh, err := repo.FindByCode(context.Background(), "SHP-NOPE")

		assert.Nil(t, sh)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormShipmentRepository_SaveWithLock(t *testing.T) {
	t.Run("updates row when version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		sh, err := shipment.NewShipment("SHP-1001", "Purolator", valueobject.USD)
		require.NoError(t, err)
		sh.IncrementVersion()

		mock.ExpectExec(`UPDATE "shipments" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveWithLock(context.Background(), sh, 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects stale version with concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		sh, err := shipment.NewShipment("SHP-1001", "Purolator", valueobject.USD)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "shipments" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "shipments" WHERE id = \$1`).
			WithArgs(sh.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err = repo.SaveWithLock(context.Background(), sh, 1)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing row as not found", func(t *testing.T) {
		repo, mock, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		sh, err := shipment.NewShipment("SHP-1001", "Purolator", valueobject.USD)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "shipments" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "shipments" WHERE id = \$1`).
			WithArgs(sh.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err = repo.SaveWithLock(context.Background(), sh, 1)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormShipmentRepository_FindAll(t *testing.T) {
	t.Run("filters by invoice status", func(t *testing.T) {
		repo, mock, mockDB := newMockShipmentRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "version", "shipment_code", "currency", "status", "invoice_status"}).
			AddRow(uuid.New(), 1, "SHP-1001", "USD", "delivered", "exception").
			AddRow(uuid.New(), 1, "SHP-1002", "USD", "delivered", "exception")

		mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE invoice_status = \$1 ORDER BY created_at desc`).
			WithArgs("exception").
			WillReturnRows(rows)

		status := shipment.InvoiceStatusException
		shipments, err := repo.FindAll(context.Background(), shipment.Filter{InvoiceStatus: &status})

		assert.NoError(t, err)
		assert.Len(t, shipments, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
