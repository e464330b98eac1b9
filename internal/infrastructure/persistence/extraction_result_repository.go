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

// GormExtractionResultRepository implements apinvoice.ExtractionResultRepository using GORM
type GormExtractionResultRepository struct {
	db *gorm.DB
}

// NewGormExtractionResultRepository creates a new GormExtractionResultRepository
func NewGormExtractionResultRepository(db *gorm.DB) *GormExtractionResultRepository {
	return &GormExtractionResultRepository{db: db}
}

// FindByUploadID finds the extraction result for an upload
func (r *GormExtractionResultRepository) FindByUploadID(ctx context.Context, uploadID uuid.UUID) (*apinvoice.ExtractionResult, error) {
	var model models.ExtractionResultModel
	if err := r.db.WithContext(ctx).
		Where("upload_id = ?", uploadID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists the extraction result, replacing any prior result for the
// same upload so a re-run of extraction supersedes stale data.
func (r *GormExtractionResultRepository) Save(ctx context.Context, result *apinvoice.ExtractionResult) error {
	model := models.ExtractionResultModelFromDomain(result)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("upload_id = ? AND id <> ?", result.UploadID, result.ID).
			Delete(&models.ExtractionResultModel{}).Error; err != nil {
			return err
		}
		return tx.Save(model).Error
	})
}

// DeleteByUploadID removes the extraction result for an upload
func (r *GormExtractionResultRepository) DeleteByUploadID(ctx context.Context, uploadID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("upload_id = ?", uploadID).
		Delete(&models.ExtractionResultModel{}).Error
}
