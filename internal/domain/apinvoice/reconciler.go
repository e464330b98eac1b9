package apinvoice

import (
	"fmt"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Classification is the verdict of reconciling one matched pair
type Classification string

const (
	ClassificationBalanced  Classification = "balanced"
	ClassificationException Classification = "exception"
	ClassificationError     Classification = "error"
)

// ReconciliationOutcome is the ephemeral verdict for one matched pair in one
// run. It is never persisted as its own entity; committing paths fold it into
// a status-history entry.
type ReconciliationOutcome struct {
	ShipmentRef    string          `json:"shipment_ref"`
	ShipmentID     uuid.UUID       `json:"shipment_id,omitempty"`
	InvoiceNumber  string          `json:"invoice_number"`
	QuotedTotal    decimal.Decimal `json:"quoted_total"`
	ActualTotal    decimal.Decimal `json:"actual_total"`
	Variance       decimal.Decimal `json:"variance"`
	Classification Classification  `json:"classification"`
	Reasons        []string        `json:"reasons,omitempty"`
}

// BatchSummary aggregates one reconciliation run. Outcomes keep the order of
// the input extraction records.
type BatchSummary struct {
	Balanced   int                     `json:"balanced"`
	Exceptions int                     `json:"exceptions"`
	Errors     int                     `json:"errors"`
	Outcomes   []ReconciliationOutcome `json:"outcomes"`
}

// Reconciler classifies matched pairs as balanced or exception. It is
// read-only: it never mutates the shipment. Persisting its verdict is a
// separate step gated by the caller's apply flag, so dry-run and committing
// reconciliations share identical logic.
type Reconciler struct{}

// NewReconciler creates a reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile computes the verdict for one matched pair. Quoted total comes
// from the shipment's best quoted-rate source; actual total is the extracted
// invoice total. Amounts closer than one cent classify as balanced.
func (r *Reconciler) Reconcile(pair MatchedPair) ReconciliationOutcome {
	if pair.Shipment == nil {
		return ReconciliationOutcome{
			ShipmentRef:    pair.ShipmentRef,
			InvoiceNumber:  pair.Record.InvoiceNumber,
			ActualTotal:    pair.Record.Total,
			Classification: ClassificationError,
			Reasons:        []string{pair.ErrorReason},
		}
	}

	quoted := pair.Shipment.QuotedTotal()
	actual := pair.Record.Total
	variance := actual.Sub(quoted)

	outcome := ReconciliationOutcome{
		ShipmentRef:   pair.Shipment.ShipmentCode,
		ShipmentID:    pair.Shipment.ID,
		InvoiceNumber: pair.Record.InvoiceNumber,
		QuotedTotal:   quoted,
		ActualTotal:   actual,
		Variance:      variance,
	}

	if variance.Abs().LessThan(valueobject.CentTolerance) {
		outcome.Classification = ClassificationBalanced
		return outcome
	}

	outcome.Classification = ClassificationException
	outcome.Reasons = []string{fmt.Sprintf(
		"Quoted %s but carrier invoiced %s, variance %+.2f",
		quoted.StringFixed(2), actual.StringFixed(2), variance.InexactFloat64(),
	)}
	return outcome
}

// ReconcileAll runs every pair through Reconcile and tallies the verdicts.
// Pairs have no cross-iteration dependency; outcomes keep input order.
func (r *Reconciler) ReconcileAll(pairs []MatchedPair) BatchSummary {
	summary := BatchSummary{Outcomes: make([]ReconciliationOutcome, 0, len(pairs))}
	for _, pair := range pairs {
		outcome := r.Reconcile(pair)
		switch outcome.Classification {
		case ClassificationBalanced:
			summary.Balanced++
		case ClassificationException:
			summary.Exceptions++
		case ClassificationError:
			summary.Errors++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	return summary
}
