package shipment

import (
	"github.com/freightdesk/backend/internal/domain/shared"
)

// Event types emitted by the shipment aggregate
const (
	EventTypeInvoiceStatusChanged = "shipment.invoice_status_changed"
	EventTypeActualCostsApplied   = "shipment.actual_costs_applied"
	EventTypeActualCostsUnapplied = "shipment.actual_costs_unapplied"
	EventTypeChargesOverridden    = "shipment.charges_overridden"
)

const aggregateType = "shipment"

// InvoiceStatusChangedEvent is emitted on every invoice-status transition
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	ShipmentCode string        `json:"shipment_code"`
	FromStatus   InvoiceStatus `json:"from_status"`
	ToStatus     InvoiceStatus `json:"to_status"`
}

// NewInvoiceStatusChangedEvent creates a new invoice status changed event
func NewInvoiceStatusChangedEvent(s *Shipment, from, to InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, aggregateType, s.ID),
		ShipmentCode:    s.ShipmentCode,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// ActualCostsAppliedEvent is emitted after carrier-invoiced costs are applied.
// Subscribers use it for best-effort exception detection.
type ActualCostsAppliedEvent struct {
	shared.BaseDomainEvent
	ShipmentCode string          `json:"shipment_code"`
	Invoice      InvoiceRef      `json:"invoice"`
	Comparison   *CostComparison `json:"comparison"`
}

// NewActualCostsAppliedEvent creates a new actual costs applied event
func NewActualCostsAppliedEvent(s *Shipment, invoice InvoiceRef, comparison *CostComparison) *ActualCostsAppliedEvent {
	return &ActualCostsAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActualCostsApplied, aggregateType, s.ID),
		ShipmentCode:    s.ShipmentCode,
		Invoice:         invoice,
		Comparison:      comparison,
	}
}

// ActualCostsUnappliedEvent is emitted after actual-cost data is stripped
type ActualCostsUnappliedEvent struct {
	shared.BaseDomainEvent
	ShipmentCode string     `json:"shipment_code"`
	Invoice      InvoiceRef `json:"invoice"`
	ChargeCodes  []string   `json:"charge_codes"`
}

// NewActualCostsUnappliedEvent creates a new actual costs unapplied event
func NewActualCostsUnappliedEvent(s *Shipment, invoice InvoiceRef, chargeCodes []string) *ActualCostsUnappliedEvent {
	return &ActualCostsUnappliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActualCostsUnapplied, aggregateType, s.ID),
		ShipmentCode:    s.ShipmentCode,
		Invoice:         invoice,
		ChargeCodes:     chargeCodes,
	}
}

// ChargesOverriddenEvent is emitted when an approved charge set is reversed
type ChargesOverriddenEvent struct {
	shared.BaseDomainEvent
	ShipmentCode string       `json:"shipment_code"`
	Reason       string       `json:"reason"`
	OverrideType OverrideType `json:"override_type"`
	OverriddenBy string       `json:"overridden_by"`
}

// NewChargesOverriddenEvent creates a new charges overridden event
func NewChargesOverriddenEvent(s *Shipment, override *ChargeOverride) *ChargesOverriddenEvent {
	return &ChargesOverriddenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChargesOverridden, aggregateType, s.ID),
		ShipmentCode:    s.ShipmentCode,
		Reason:          override.Reason,
		OverrideType:    override.Type,
		OverriddenBy:    override.OverriddenBy,
	}
}
