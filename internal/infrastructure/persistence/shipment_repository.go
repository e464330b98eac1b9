package persistence

import (
	"context"
	"errors"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/freightdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShipmentRepository implements shipment.Repository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by its internal document ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a shipment by its external shipment code. The code is not
// guaranteed unique across historical data; the first match by creation order
// wins.
func (r *GormShipmentRepository) FindByCode(ctx context.Context, code string) (*shipment.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Where("shipment_code = ?", code).
		Order("created_at asc").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds shipments with filtering
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shipment.Filter) ([]*shipment.Shipment, error) {
	var shipmentModels []models.ShipmentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ShipmentModel{}), filter)

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Order("created_at desc").Find(&shipmentModels).Error; err != nil {
		return nil, err
	}
	shipments := make([]*shipment.Shipment, len(shipmentModels))
	for i := range shipmentModels {
		shipments[i] = shipmentModels[i].ToDomain()
	}
	return shipments, nil
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shipment.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ShipmentModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the shipment without a version check
func (r *GormShipmentRepository) Save(ctx context.Context, s *shipment.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock persists the shipment only if the stored version still matches
// the expected one, rejecting stale writes with a concurrency conflict.
func (r *GormShipmentRepository) SaveWithLock(ctx context.Context, s *shipment.Shipment, expectedVersion int) error {
	model := models.ShipmentModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ? AND version = ?", s.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.ShipmentModel{}).
			Where("id = ?", s.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter shipment.Filter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.InvoiceStatus != nil {
		query = query.Where("invoice_status = ?", *filter.InvoiceStatus)
	}
	if filter.CarrierName != "" {
		query = query.Where("carrier_name = ?", filter.CarrierName)
	}
	if filter.Search != "" {
		query = query.Where("shipment_code ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}
