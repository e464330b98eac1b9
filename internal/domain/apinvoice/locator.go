package apinvoice

import (
	"context"
	"errors"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/google/uuid"
)

// Locator resolves a shipment reference to exactly one stored shipment.
// Resolution is dual-strategy, in order: the internal document ID first
// (cheaper to resolve), then the external human-readable shipment code
// (not guaranteed unique across historical data, first match wins).
type Locator struct {
	shipments shipment.Repository
}

// NewLocator creates a shipment locator
func NewLocator(shipments shipment.Repository) *Locator {
	return &Locator{shipments: shipments}
}

// Locate resolves a reference that may be either key. It returns
// shared.ErrNotFound when neither strategy resolves, so callers can
// distinguish a stale reference from a malformed request.
func (l *Locator) Locate(ctx context.Context, reference string) (*shipment.Shipment, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shipment reference cannot be empty")
	}

	if id, err := uuid.Parse(reference); err == nil {
		s, err := l.shipments.FindByID(ctx, id)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	s, err := l.shipments.FindByCode(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s, nil
}
