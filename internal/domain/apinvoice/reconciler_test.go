package apinvoice

import (
	"testing"

	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairWithQuoted(t *testing.T, quoted, actual float64) MatchedPair {
	t.Helper()
	s := mustNewShipment(t, "SHP-3001")
	s.ManualRates = shipment.RateBreakdown{
		{Code: "FRT", Name: "Freight", Charge: decimal.NewFromFloat(quoted)},
	}
	return MatchedPair{
		Record:      ExtractedRecord{Type: RecordTypeShipment, InvoiceNumber: "INV-9", Total: decimal.NewFromFloat(actual)},
		Shipment:    s,
		ShipmentRef: s.ShipmentCode,
	}
}

func TestReconcileBalanced(t *testing.T) {
	outcome := NewReconciler().Reconcile(pairWithQuoted(t, 100.00, 100.00))

	assert.Equal(t, ClassificationBalanced, outcome.Classification)
	assert.True(t, outcome.Variance.IsZero())
	assert.Empty(t, outcome.Reasons)
}

func TestReconcileException(t *testing.T) {
	outcome := NewReconciler().Reconcile(pairWithQuoted(t, 150.00, 162.50))

	assert.Equal(t, ClassificationException, outcome.Classification)
	assert.True(t, outcome.Variance.Equal(decimal.NewFromFloat(12.50)))
	require.Len(t, outcome.Reasons, 1)
	assert.Contains(t, outcome.Reasons[0], "150.00")
	assert.Contains(t, outcome.Reasons[0], "162.50")
	assert.Contains(t, outcome.Reasons[0], "+12.50")
}

func TestReconcileCentTolerance(t *testing.T) {
	tests := []struct {
		name     string
		quoted   float64
		actual   float64
		expected Classification
	}{
		{"exactly equal", 100.00, 100.00, ClassificationBalanced},
		{"under one cent", 100.00, 100.009, ClassificationBalanced},
		{"exactly one cent", 100.00, 100.01, ClassificationException},
		{"negative variance within tolerance", 100.00, 99.995, ClassificationBalanced},
		{"undercharge beyond tolerance", 100.00, 95.00, ClassificationException},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := NewReconciler().Reconcile(pairWithQuoted(t, tt.quoted, tt.actual))
			assert.Equal(t, tt.expected, outcome.Classification)
		})
	}
}

func TestReconcileUnmatchedPair(t *testing.T) {
	outcome := NewReconciler().Reconcile(MatchedPair{
		Record:      ExtractedRecord{Type: RecordTypeShipment, Total: decimal.NewFromFloat(50)},
		ErrorReason: ReasonNoMatchedShipment,
	})

	assert.Equal(t, ClassificationError, outcome.Classification)
	assert.Equal(t, []string{ReasonNoMatchedShipment}, outcome.Reasons)
}

func TestReconcileIsReadOnly(t *testing.T) {
	pair := pairWithQuoted(t, 150.00, 162.50)
	versionBefore := pair.Shipment.GetVersion()

	NewReconciler().Reconcile(pair)

	assert.Equal(t, versionBefore, pair.Shipment.GetVersion())
	assert.Nil(t, pair.Shipment.CostComparison)
	assert.Empty(t, pair.Shipment.GetDomainEvents())
}

func TestReconcileAll(t *testing.T) {
	pairs := []MatchedPair{
		pairWithQuoted(t, 100.00, 100.00),
		pairWithQuoted(t, 150.00, 162.50),
		{
			Record:      ExtractedRecord{Type: RecordTypeShipment, Total: decimal.NewFromFloat(75)},
			ErrorReason: ReasonNoMatchedShipment,
		},
	}

	summary := NewReconciler().ReconcileAll(pairs)

	assert.Equal(t, 1, summary.Balanced)
	assert.Equal(t, 1, summary.Exceptions)
	// unmatched records count under errors, not exceptions
	assert.Equal(t, 1, summary.Errors)
	require.Len(t, summary.Outcomes, 3)
	assert.Equal(t, ClassificationBalanced, summary.Outcomes[0].Classification)
	assert.Equal(t, ClassificationException, summary.Outcomes[1].Classification)
	assert.Equal(t, ClassificationError, summary.Outcomes[2].Classification)
}
