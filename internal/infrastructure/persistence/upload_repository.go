package persistence

import (
	"context"
	"errors"

	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUploadRepository implements apinvoice.UploadRepository using GORM
type GormUploadRepository struct {
	db *gorm.DB
}

// NewGormUploadRepository creates a new GormUploadRepository
func NewGormUploadRepository(db *gorm.DB) *GormUploadRepository {
	return &GormUploadRepository{db: db}
}

// FindByID finds an upload record by ID
func (r *GormUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*apinvoice.UploadRecord, error) {
	var model models.UploadRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists upload records
func (r *GormUploadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*apinvoice.UploadRecord, error) {
	var uploadModels []models.UploadRecordModel
	query := r.db.WithContext(ctx).Model(&models.UploadRecordModel{})
	if filter.Search != "" {
		query = query.Where("file_name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	sortField := ValidateSortField(filter.OrderBy, UploadSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	if err := query.Order(sortField + " " + sortOrder).Find(&uploadModels).Error; err != nil {
		return nil, err
	}
	uploads := make([]*apinvoice.UploadRecord, len(uploadModels))
	for i := range uploadModels {
		uploads[i] = uploadModels[i].ToDomain()
	}
	return uploads, nil
}

// Save persists the upload record
func (r *GormUploadRepository) Save(ctx context.Context, u *apinvoice.UploadRecord) error {
	model := models.UploadRecordModelFromDomain(u)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveClassification merges only the classification column into the stored
// row. Other columns are never touched so concurrent writers adding metadata
// are not clobbered by a full-row overwrite.
func (r *GormUploadRepository) SaveClassification(ctx context.Context, id uuid.UUID, classification *apinvoice.PageClassification) error {
	result := r.db.WithContext(ctx).
		Model(&models.UploadRecordModel{}).
		Where("id = ?", id).
		Update("classification", classification)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the upload record
func (r *GormUploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.UploadRecordModel{}, "id = ?", id).Error
}
