package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockUploadRepository creates a GormUploadRepository with a mocked SQL connection
func newMockUploadRepository(t *testing.T) (*GormUploadRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormUploadRepository(gormDB), mock, mockDB
}

func TestGormUploadRepository_FindByID(t *testing.T) {
	t.Run("finds existing upload", func(t *testing.T) {
		repo, mock, mockDB := newMockUploadRepository(t)
		defer mockDB.Close()

		uploadID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "file_name", "content_type", "storage_key", "status"}).
			AddRow(uploadID, 1, "invoice.pdf", "application/pdf", "ap-invoices/x/invoice.pdf", "uploaded")

		mock.ExpectQuery(`SELECT \* FROM "ap_invoice_uploads" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(uploadID, 1).
			WillReturnRows(rows)

		upload, err := repo.FindByID(context.Background(), uploadID)

		assert.NoError(t, err)
		require.NotNil(t, upload)
		assert.Equal(t, "invoice.pdf", upload.FileName)
		assert.Equal(t, apinvoice.UploadStatusUploaded, upload.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing upload", func(t *testing.T) {
		repo, mock, mockDB := newMockUploadRepository(t)
		defer mockDB.Close()

		uploadID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "ap_invoice_uploads" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(uploadID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		upload, err := repo.FindByID(context.Background(), uploadID)

		assert.Nil(t, upload)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUploadRepository_FindAll(t *testing.T) {
	t.Run("orders by validated sort field", func(t *testing.T) {
		repo, mock, mockDB := newMockUploadRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "version", "file_name", "status"}).
			AddRow(uuid.New(), 1, "a.pdf", "uploaded").
			AddRow(uuid.New(), 1, "b.pdf", "reconciled")

		mock.ExpectQuery(`SELECT \* FROM "ap_invoice_uploads" ORDER BY file_name ASC`).
			WillReturnRows(rows)

		uploads, err := repo.FindAll(context.Background(), shared.Filter{OrderBy: "file_name", OrderDir: "asc"})

		assert.NoError(t, err)
		assert.Len(t, uploads, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown sort field and falls back to created_at", func(t *testing.T) {
		repo, mock, mockDB := newMockUploadRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "ap_invoice_uploads" ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version", "file_name", "status"}))

		uploads, err := repo.FindAll(context.Background(), shared.Filter{OrderBy: "file_name; DROP TABLE shipments"})

		assert.NoError(t, err)
		assert.Empty(t, uploads)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUploadRepository_SaveClassification(t *testing.T) {
	t.Run("merges classification into existing row", func(t *testing.T) {
		repo, mock, mockDB := newMockUploadRepository(t)
		defer mockDB.Close()

		uploadID := uuid.New()

		mock.ExpectExec(`UPDATE "ap_invoice_uploads" SET "classification"=\$1,"updated_at"=\$2 WHERE id = \$3`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveClassification(context.Background(), uploadID, apinvoice.DefaultClassification())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing row as not found", func(t *testing.T) {
		repo, mock, mockDB := newMockUploadRepository(t)
		defer mockDB.Close()

		uploadID := uuid.New()

		mock.ExpectExec(`UPDATE "ap_invoice_uploads" SET "classification"=\$1,"updated_at"=\$2 WHERE id = \$3`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveClassification(context.Background(), uploadID, apinvoice.DefaultClassification())

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
