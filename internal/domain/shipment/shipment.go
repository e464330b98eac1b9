package shipment

import (
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CostComparison summarizes quoted vs carrier-invoiced totals for a shipment
type CostComparison struct {
	QuotedTotal     decimal.Decimal      `json:"quoted_total"`
	ActualTotal     decimal.Decimal      `json:"actual_total"`
	Variance        decimal.Decimal      `json:"variance"`
	VariancePercent decimal.Decimal      `json:"variance_percent"`
	Currency        valueobject.Currency `json:"currency"`
	InvoiceNumber   string               `json:"invoice_number"`
	ComparedAt      time.Time            `json:"compared_at"`
}

// StatusHistoryEntry is one entry of the general shipment audit trail.
// Entries are append-only: they are never updated or deleted.
type StatusHistoryEntry struct {
	Key         string    `json:"key"`
	PriorStatus string    `json:"prior_status"`
	NewStatus   string    `json:"new_status"`
	Actor       string    `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Reason      string    `json:"reason"`
}

// Shipment is the aggregate root for a booked shipment as seen by the AP
// reconciliation core. The transport lifecycle fields are owned by the
// booking path; this core mutates the rate breakdowns, invoice status and
// approval/override fields.
type Shipment struct {
	shared.BaseAggregateRoot

	// ShipmentCode is the external human-readable key. It is independent of
	// the internal document ID and both must resolve to the same entity.
	ShipmentCode string
	CarrierName  string
	Currency     valueobject.Currency

	Status Status

	// Legacy approval fields. Schema drift means any one of these may hold
	// "approved"; use IsApproved rather than reading them directly.
	ChargeStatus   string
	ApprovalStatus string
	BillingStatus  string

	InvoiceStatus        InvoiceStatus
	InvoiceStatusHistory InvoiceStatusHistory

	// Status-specific timestamps written by invoice-status transitions
	ProcessingAt     *time.Time
	ReadyToInvoiceAt *time.Time
	ExceptionAt      *time.Time
	ProcessedAt      *time.Time
	PendingReviewAt  *time.Time

	// Quoted-rate sources in priority order: manual, markup, carrier
	ManualRates  RateBreakdown
	MarkupRates  RateBreakdown
	CarrierRates RateBreakdown

	// ActualRates is populated only after cost application
	ActualRates    RateBreakdown
	CostComparison *CostComparison

	// Approval state, reset by an override
	Approver         string
	ApprovedAt       *time.Time
	FinalizedCharges RateBreakdown
	ChargeOverride   *ChargeOverride

	StatusHistory StatusHistoryEntries

	OriginCountry string
	DestCountry   string
	DestProvince  string
}

// NewShipment creates a shipment in its initial uninvoiced state
func NewShipment(code, carrierName string, currency valueobject.Currency) (*Shipment, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_SHIPMENT_CODE", "Shipment code cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &Shipment{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		ShipmentCode:         code,
		CarrierName:          carrierName,
		Currency:             currency,
		Status:               StatusPending,
		InvoiceStatus:        InvoiceStatusUninvoiced,
		InvoiceStatusHistory: make(InvoiceStatusHistory, 0),
		StatusHistory:        make(StatusHistoryEntries, 0),
	}, nil
}

// QuotedRates returns the best available quoted-rate source, in priority
// order: manual/negotiated rates, then markup rates, then the carrier
// selected rates. An empty breakdown is returned when no source is present.
func (s *Shipment) QuotedRates() RateBreakdown {
	switch {
	case !s.ManualRates.IsEmpty():
		return s.ManualRates
	case !s.MarkupRates.IsEmpty():
		return s.MarkupRates
	case !s.CarrierRates.IsEmpty():
		return s.CarrierRates
	}
	return RateBreakdown{}
}

// QuotedTotal returns the total of the best available quoted-rate source,
// falling back to zero when none is present.
func (s *Shipment) QuotedTotal() decimal.Decimal {
	return s.QuotedRates().QuotedTotal()
}

// IsDomestic reports whether the shipment moves within a single country and
// is therefore subject to the jurisdictional tax regime.
func (s *Shipment) IsDomestic() bool {
	return s.OriginCountry != "" && s.OriginCountry == s.DestCountry
}

// TransitionInvoiceStatus moves the invoice status to the target state.
// Unknown target states are rejected. Every accepted transition writes the
// status-specific timestamp and appends to the invoice-status history.
func (s *Shipment) TransitionInvoiceStatus(target InvoiceStatus, actor string, automatic bool, invoice *InvoiceRef) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_INVOICE_STATUS", fmt.Sprintf("Unknown invoice status %q", target))
	}

	now := time.Now()
	switch target {
	case InvoiceStatusProcessing:
		s.ProcessingAt = &now
	case InvoiceStatusReadyToInvoice:
		s.ReadyToInvoiceAt = &now
	case InvoiceStatusException:
		s.ExceptionAt = &now
	case InvoiceStatusProcessed, InvoiceStatusProcessedWithException, InvoiceStatusPartiallyProcessed:
		s.ProcessedAt = &now
	case InvoiceStatusPending:
		s.PendingReviewAt = &now
	}

	from := s.InvoiceStatus
	s.InvoiceStatusHistory = append(s.InvoiceStatusHistory, InvoiceStatusTransition{
		FromStatus: from,
		ToStatus:   target,
		Label:      target.Label(),
		Timestamp:  now,
		Actor:      actor,
		Automatic:  automatic,
		Invoice:    invoice,
	})
	s.InvoiceStatus = target
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewInvoiceStatusChangedEvent(s, from, target))
	return nil
}

// ApplyActualCosts writes carrier-invoiced charges onto the shipment.
// Cancelled and voided shipments reject the call with a CANCELLED_SHIPMENT
// outcome; this is an expected business case, not a failure of the caller.
func (s *Shipment) ApplyActualCosts(charges []ActualCharge, invoice InvoiceRef, actor string) (*CostComparison, error) {
	if s.Status.IsCancelled() {
		return nil, shared.NewDomainError("CANCELLED_SHIPMENT",
			fmt.Sprintf("Cannot apply costs to shipment %s in %s status", s.ShipmentCode, s.Status))
	}
	if len(charges) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one charge is required")
	}

	now := time.Now()
	quotedTotal := s.QuotedTotal()

	actualRates := BuildActualRates(charges, s.Currency, invoice, now)
	actualTotal := actualRates.ActualTotal()
	variance := actualTotal.Sub(quotedTotal)

	variancePercent := decimal.Zero
	if !quotedTotal.IsZero() {
		variancePercent = variance.Div(quotedTotal).Mul(decimal.NewFromInt(100)).Round(2)
	}

	comparison := &CostComparison{
		QuotedTotal:     quotedTotal,
		ActualTotal:     actualTotal,
		Variance:        variance,
		VariancePercent: variancePercent,
		Currency:        s.Currency,
		InvoiceNumber:   invoice.Number,
		ComparedAt:      now,
	}

	s.ManualRates = MergeActualCharges(s.ManualRates, charges, s.Currency, invoice, now)
	s.ActualRates = actualRates
	s.CostComparison = comparison

	s.StatusHistory = append(s.StatusHistory, StatusHistoryEntry{
		Key:         "ap_invoice_applied:" + invoice.Number,
		PriorStatus: s.InvoiceStatus.String(),
		NewStatus:   s.InvoiceStatus.String(),
		Actor:       actor,
		Timestamp:   now,
		Reason: fmt.Sprintf("Applied invoice %s: quoted %s, actual %s, variance %s",
			invoice.Number, quotedTotal.StringFixed(2), actualTotal.StringFixed(2), variance.StringFixed(2)),
	})
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewActualCostsAppliedEvent(s, invoice, comparison))
	return comparison, nil
}

// UnapplyActualCosts removes previously applied actual-cost data for the
// named charges, leaving quoted fields untouched. For domestic shipments the
// jurisdictional tax line is recomputed from the remaining quoted non-tax
// charges. The operation is idempotent per charge: stripping a charge with no
// actual values present is a no-op.
func (s *Shipment) UnapplyActualCosts(charges []string, invoice InvoiceRef, actor string) ([]string, error) {
	if len(charges) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one charge is required")
	}

	now := time.Now()
	stripped, affected := StripActualValues(s.ManualRates, charges)
	s.ManualRates = stripped
	s.ActualRates = RemoveLines(s.ActualRates, charges)

	if s.IsDomestic() {
		s.ManualRates = RecomputeQuotedTax(s.ManualRates, TaxRateForProvince(s.DestProvince))
	}
	if s.ActualRates.IsEmpty() {
		s.ActualRates = nil
		s.CostComparison = nil
	}

	if len(affected) > 0 {
		s.StatusHistory = append(s.StatusHistory, StatusHistoryEntry{
			Key:         "ap_invoice_unapplied:" + invoice.Number,
			PriorStatus: s.InvoiceStatus.String(),
			NewStatus:   s.InvoiceStatus.String(),
			Actor:       actor,
			Timestamp:   now,
			Reason:      fmt.Sprintf("Unapplied invoice %s charges: %v", invoice.Number, affected),
		})
		s.UpdatedAt = now
		s.IncrementVersion()
		s.AddDomainEvent(NewActualCostsUnappliedEvent(s, invoice, affected))
	}
	return affected, nil
}
