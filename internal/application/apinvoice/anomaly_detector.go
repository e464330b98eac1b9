package apinvoice

import (
	"context"
	"fmt"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

// DefaultVarianceThresholdPercent flags shipments whose actual cost drifted
// more than this percentage from the quote.
var DefaultVarianceThresholdPercent = decimal.NewFromInt(20)

// ChargeAnomalyDetector inspects a shipment after costs were applied and
// reports suspicious outcomes: negative actual amounts, or a variance far
// beyond the quote. Detection is advisory; callers log the result and move
// on, the reconciliation pass makes the authoritative status decision.
type ChargeAnomalyDetector struct {
	varianceThresholdPercent decimal.Decimal
}

// NewChargeAnomalyDetector creates a detector with the default threshold.
func NewChargeAnomalyDetector() *ChargeAnomalyDetector {
	return &ChargeAnomalyDetector{varianceThresholdPercent: DefaultVarianceThresholdPercent}
}

// NewChargeAnomalyDetectorWithThreshold creates a detector with a custom
// variance threshold percentage.
func NewChargeAnomalyDetectorWithThreshold(thresholdPercent decimal.Decimal) *ChargeAnomalyDetector {
	return &ChargeAnomalyDetector{varianceThresholdPercent: thresholdPercent}
}

// Detect returns an error describing the first anomaly found, or nil when
// the applied costs look plausible.
func (d *ChargeAnomalyDetector) Detect(_ context.Context, s *shipment.Shipment) error {
	for _, line := range s.ActualRates {
		if line.ActualCharge != nil && line.ActualCharge.IsNegative() {
			return shared.NewDomainError("NEGATIVE_ACTUAL_CHARGE",
				fmt.Sprintf("actual charge %s on shipment %s is negative: %s",
					line.Code, s.ShipmentCode, line.ActualCharge.StringFixed(2)))
		}
	}

	if s.CostComparison != nil && !s.CostComparison.QuotedTotal.IsZero() {
		percent := s.CostComparison.VariancePercent.Abs()
		if percent.GreaterThan(d.varianceThresholdPercent) {
			return shared.NewDomainError("VARIANCE_OUT_OF_RANGE",
				fmt.Sprintf("shipment %s variance %s%% exceeds threshold %s%%",
					s.ShipmentCode, percent.StringFixed(2), d.varianceThresholdPercent.StringFixed(2)))
		}
	}

	return nil
}

// Ensure ChargeAnomalyDetector implements the ExceptionDetector port
var _ ExceptionDetector = (*ChargeAnomalyDetector)(nil)
