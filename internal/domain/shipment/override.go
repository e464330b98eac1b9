package shipment

import (
	"strings"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
)

// approvedValue is the marker written into whichever legacy status field a
// given record happens to use.
const approvedValue = "approved"

// OverrideType classifies why an approval was reversed
type OverrideType string

const (
	OverrideTypeChargeDispute OverrideType = "charge_dispute"
	OverrideTypeRebill        OverrideType = "rebill"
	OverrideTypeCorrection    OverrideType = "correction"
)

// IsValid checks if the override type is a known value
func (t OverrideType) IsValid() bool {
	switch t {
	case OverrideTypeChargeDispute, OverrideTypeRebill, OverrideTypeCorrection:
		return true
	}
	return false
}

// ChargeOverride records an administrative reversal of an approved charge
// set. It snapshots enough prior state to audit or manually undo the
// override later.
type ChargeOverride struct {
	Reason       string       `json:"reason"`
	Type         OverrideType `json:"type"`
	OverriddenBy string       `json:"overridden_by"`
	OverriddenAt time.Time    `json:"overridden_at"`

	PriorChargeStatus     string        `json:"prior_charge_status"`
	PriorApprovalStatus   string        `json:"prior_approval_status"`
	PriorBillingStatus    string        `json:"prior_billing_status"`
	PriorInvoiceStatus    InvoiceStatus `json:"prior_invoice_status"`
	PriorApprover         string        `json:"prior_approver"`
	PriorApprovedAt       *time.Time    `json:"prior_approved_at,omitempty"`
	PriorFinalizedCharges RateBreakdown `json:"prior_finalized_charges,omitempty"`
}

// IsApproved reports whether the shipment's charges are approved. Because of
// schema drift the approval marker may live in any of three legacy status
// fields, so all three are checked.
func (s *Shipment) IsApproved() bool {
	return strings.EqualFold(s.ChargeStatus, approvedValue) ||
		strings.EqualFold(s.ApprovalStatus, approvedValue) ||
		strings.EqualFold(s.BillingStatus, approvedValue)
}

// OverrideApproval reverses an approved charge set: it snapshots the prior
// approval state, clears the approval fields and finalized charges, and
// returns the shipment to the pending invoice status for re-processing.
// Shipments that are not approved reject the call.
func (s *Shipment) OverrideApproval(reason string, overrideType OverrideType, actor string) error {
	if !s.IsApproved() {
		return shared.NewDomainError("NOT_APPROVED",
			"Shipment "+s.ShipmentCode+" has no approved charges to override")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Override reason is required")
	}
	if !overrideType.IsValid() {
		return shared.NewDomainError("INVALID_OVERRIDE_TYPE", "Unknown override type "+string(overrideType))
	}

	now := time.Now()
	override := &ChargeOverride{
		Reason:                reason,
		Type:                  overrideType,
		OverriddenBy:          actor,
		OverriddenAt:          now,
		PriorChargeStatus:     s.ChargeStatus,
		PriorApprovalStatus:   s.ApprovalStatus,
		PriorBillingStatus:    s.BillingStatus,
		PriorInvoiceStatus:    s.InvoiceStatus,
		PriorApprover:         s.Approver,
		PriorApprovedAt:       s.ApprovedAt,
		PriorFinalizedCharges: s.FinalizedCharges.Clone(),
	}

	priorInvoiceStatus := s.InvoiceStatus

	s.ChargeStatus = ""
	s.ApprovalStatus = ""
	s.BillingStatus = ""
	s.Approver = ""
	s.ApprovedAt = nil
	s.FinalizedCharges = nil
	s.ChargeOverride = override

	s.StatusHistory = append(s.StatusHistory, StatusHistoryEntry{
		Key:         "charge_override",
		PriorStatus: priorInvoiceStatus.String(),
		NewStatus:   InvoiceStatusPending.String(),
		Actor:       actor,
		Timestamp:   now,
		Reason:      string(overrideType) + ": " + reason,
	})

	if err := s.TransitionInvoiceStatus(InvoiceStatusPending, actor, false, nil); err != nil {
		return err
	}

	s.AddDomainEvent(NewChargesOverriddenEvent(s, override))
	return nil
}
