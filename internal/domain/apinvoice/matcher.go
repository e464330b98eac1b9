package apinvoice

import (
	"context"
	"errors"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
)

// Error reasons carried on unmatched pairs
const (
	ReasonNoMatchedShipment = "No matched shipment"
	ReasonShipmentNotFound  = "Shipment not found"
)

// MatchedPair pairs one extracted shipment record with its resolved shipment.
// Shipment is nil when resolution failed, with ErrorReason saying why.
type MatchedPair struct {
	Record      ExtractedRecord    `json:"record"`
	Shipment    *shipment.Shipment `json:"-"`
	ShipmentRef string             `json:"shipment_ref,omitempty"`
	ErrorReason string             `json:"error_reason,omitempty"`
}

// Matcher pairs extracted invoice records with stored shipments
type Matcher struct {
	locator *Locator
}

// NewMatcher creates a matcher backed by the given locator
func NewMatcher(locator *Locator) *Matcher {
	return &Matcher{locator: locator}
}

// Match resolves every shipment-type record of the extraction result.
// Each shipment-type record appears exactly once in the output, in input
// order, matched or carrying an explicit error reason. Charge-type records
// are not emitted on their own; their data rides on the shipment records.
func (m *Matcher) Match(ctx context.Context, records []ExtractedRecord) ([]MatchedPair, error) {
	pairs := make([]MatchedPair, 0, len(records))
	for _, record := range records {
		if record.Type != RecordTypeShipment {
			continue
		}

		if record.ShipmentHint == "" {
			pairs = append(pairs, MatchedPair{Record: record, ErrorReason: ReasonNoMatchedShipment})
			continue
		}

		s, err := m.locator.Locate(ctx, record.ShipmentHint)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.Is(err, shared.ErrNotFound) || (errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND") {
				pairs = append(pairs, MatchedPair{
					Record:      record,
					ShipmentRef: record.ShipmentHint,
					ErrorReason: ReasonShipmentNotFound,
				})
				continue
			}
			return nil, err
		}

		pairs = append(pairs, MatchedPair{
			Record:      record,
			Shipment:    s,
			ShipmentRef: s.ShipmentCode,
		})
	}
	return pairs, nil
}
