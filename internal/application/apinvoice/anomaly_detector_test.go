package apinvoice

import (
	"context"
	"testing"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeAnomalyDetector_CleanShipment(t *testing.T) {
	detector := NewChargeAnomalyDetector()
	sh := quotedShipment(t, "SHP-2001", 150.00)

	_, err := sh.ApplyActualCosts(
		[]shipment.ActualCharge{{Code: "FRT", Name: "Freight", Amount: decimal.RequireFromString("155.00")}},
		shipment.InvoiceRef{Number: "INV-1", Date: time.Now()}, "ap.clerk",
	)
	require.NoError(t, err)

	assert.NoError(t, detector.Detect(context.Background(), sh))
}

func TestChargeAnomalyDetector_NegativeActualCharge(t *testing.T) {
	detector := NewChargeAnomalyDetector()
	sh := quotedShipment(t, "SHP-2002", 150.00)

	_, err := sh.ApplyActualCosts(
		[]shipment.ActualCharge{{Code: "FRT", Name: "Freight", Amount: decimal.RequireFromString("-25.00")}},
		shipment.InvoiceRef{Number: "INV-2", Date: time.Now()}, "ap.clerk",
	)
	require.NoError(t, err)

	detectErr := detector.Detect(context.Background(), sh)
	require.Error(t, detectErr)

	var domainErr *shared.DomainError
	require.ErrorAs(t, detectErr, &domainErr)
	assert.Equal(t, "NEGATIVE_ACTUAL_CHARGE", domainErr.Code)
}

func TestChargeAnomalyDetector_VarianceOutOfRange(t *testing.T) {
	detector := NewChargeAnomalyDetector()
	sh := quotedShipment(t, "SHP-2003", 100.00)

	_, err := sh.ApplyActualCosts(
		[]shipment.ActualCharge{{Code: "FRT", Name: "Freight", Amount: decimal.RequireFromString("250.00")}},
		shipment.InvoiceRef{Number: "INV-3", Date: time.Now()}, "ap.clerk",
	)
	require.NoError(t, err)

	detectErr := detector.Detect(context.Background(), sh)
	require.Error(t, detectErr)

	var domainErr *shared.DomainError
	require.ErrorAs(t, detectErr, &domainErr)
	assert.Equal(t, "VARIANCE_OUT_OF_RANGE", domainErr.Code)
}

func TestChargeAnomalyDetector_CustomThreshold(t *testing.T) {
	detector := NewChargeAnomalyDetectorWithThreshold(decimal.NewFromInt(5))
	sh := quotedShipment(t, "SHP-2004", 100.00)

	_, err := sh.ApplyActualCosts(
		[]shipment.ActualCharge{{Code: "FRT", Name: "Freight", Amount: decimal.RequireFromString("110.00")}},
		shipment.InvoiceRef{Number: "INV-4", Date: time.Now()}, "ap.clerk",
	)
	require.NoError(t, err)

	assert.Error(t, detector.Detect(context.Background(), sh))
}

func TestChargeAnomalyDetector_NoComparison(t *testing.T) {
	detector := NewChargeAnomalyDetector()
	sh := quotedShipment(t, "SHP-2005", 100.00)

	assert.NoError(t, detector.Detect(context.Background(), sh))
}
