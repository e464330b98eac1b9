package shipment

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter holds the query options for listing shipments
type Filter struct {
	shared.Filter
	Status        *Status
	InvoiceStatus *InvoiceStatus
	CarrierName   string
}

// Repository defines the persistence interface for shipments.
// FindByID resolves the internal document ID; FindByCode resolves the
// external shipment code. Both return shared.ErrNotFound when no row exists.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindByCode(ctx context.Context, code string) (*Shipment, error)
	FindAll(ctx context.Context, filter Filter) ([]*Shipment, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Save(ctx context.Context, s *Shipment) error
	// SaveWithLock persists the shipment only if its stored version matches,
	// returning shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, s *Shipment, expectedVersion int) error
}
