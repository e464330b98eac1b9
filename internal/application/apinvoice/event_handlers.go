package apinvoice

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"go.uber.org/zap"
)

// StatusAuditHandler writes a structured audit line for every shipment
// invoicing event so cost mutations are traceable without reading JSONB
// histories out of the database.
type StatusAuditHandler struct {
	logger *zap.Logger
}

// NewStatusAuditHandler creates a new StatusAuditHandler
func NewStatusAuditHandler(logger *zap.Logger) *StatusAuditHandler {
	return &StatusAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *StatusAuditHandler) EventTypes() []string {
	return []string{
		shipment.EventTypeInvoiceStatusChanged,
		shipment.EventTypeActualCostsApplied,
		shipment.EventTypeActualCostsUnapplied,
		shipment.EventTypeChargesOverridden,
	}
}

// Handle logs the event with its aggregate context
func (h *StatusAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("shipment_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *shipment.InvoiceStatusChangedEvent:
		fields = append(fields,
			zap.String("shipment_code", e.ShipmentCode),
			zap.String("from_status", string(e.FromStatus)),
			zap.String("to_status", string(e.ToStatus)),
		)
	case *shipment.ActualCostsAppliedEvent:
		fields = append(fields,
			zap.String("shipment_code", e.ShipmentCode),
			zap.String("invoice_number", e.Invoice.Number),
		)
		if e.Comparison != nil {
			fields = append(fields, zap.String("variance", e.Comparison.Variance.StringFixed(2)))
		}
	case *shipment.ActualCostsUnappliedEvent:
		fields = append(fields,
			zap.String("shipment_code", e.ShipmentCode),
			zap.String("invoice_number", e.Invoice.Number),
			zap.Strings("charge_codes", e.ChargeCodes),
		)
	case *shipment.ChargesOverriddenEvent:
		fields = append(fields,
			zap.String("shipment_code", e.ShipmentCode),
			zap.String("override_type", string(e.OverrideType)),
			zap.String("overridden_by", e.OverriddenBy),
		)
	}

	h.logger.Info("shipment invoicing event", fields...)
	return nil
}

// Ensure StatusAuditHandler implements the EventHandler interface
var _ shared.EventHandler = (*StatusAuditHandler)(nil)
