package shipment

import (
	"testing"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShipment(t *testing.T) *Shipment {
	t.Helper()
	s, err := NewShipment("SHP-0001", "Purolator", valueobject.USD)
	require.NoError(t, err)
	return s
}

func TestNewShipment(t *testing.T) {
	s := newTestShipment(t)

	assert.Equal(t, "SHP-0001", s.ShipmentCode)
	assert.Equal(t, StatusPending, s.Status)
	assert.Equal(t, InvoiceStatusUninvoiced, s.InvoiceStatus)
	assert.Equal(t, 1, s.GetVersion())
	assert.NotEqual(t, "", s.ID.String())

	_, err := NewShipment("", "Purolator", valueobject.USD)
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_SHIPMENT_CODE", domainErr.Code)
}

func TestQuotedRatesPriority(t *testing.T) {
	manual := RateBreakdown{{Code: "FRT", Charge: decimal.NewFromFloat(90.00)}}
	markup := RateBreakdown{{Code: "FRT", Charge: decimal.NewFromFloat(100.00)}}
	carrier := RateBreakdown{{Code: "FRT", Charge: decimal.NewFromFloat(80.00)}}

	tests := []struct {
		name     string
		mutate   func(*Shipment)
		expected decimal.Decimal
	}{
		{"manual wins over all", func(s *Shipment) {
			s.ManualRates, s.MarkupRates, s.CarrierRates = manual, markup, carrier
		}, decimal.NewFromFloat(90.00)},
		{"markup wins over carrier", func(s *Shipment) {
			s.MarkupRates, s.CarrierRates = markup, carrier
		}, decimal.NewFromFloat(100.00)},
		{"carrier as last resort", func(s *Shipment) {
			s.CarrierRates = carrier
		}, decimal.NewFromFloat(80.00)},
		{"no source yields zero", func(s *Shipment) {}, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestShipment(t)
			tt.mutate(s)
			assert.True(t, s.QuotedTotal().Equal(tt.expected))
		})
	}
}

func TestIsDomestic(t *testing.T) {
	s := newTestShipment(t)
	assert.False(t, s.IsDomestic())

	s.OriginCountry, s.DestCountry = "CA", "US"
	assert.False(t, s.IsDomestic())

	s.DestCountry = "CA"
	assert.True(t, s.IsDomestic())
}

func TestApplyActualCosts(t *testing.T) {
	s := newTestShipment(t)
	s.ManualRates = RateBreakdown{
		{Code: "FRT", Name: "Freight", Charge: decimal.NewFromFloat(135.00), Currency: valueobject.USD},
		{Code: "FSC", Name: "Fuel Surcharge", Charge: decimal.NewFromFloat(15.00), Currency: valueobject.USD},
	}

	invoice := InvoiceRef{Number: "INV-5001", Date: time.Now()}
	comparison, err := s.ApplyActualCosts([]ActualCharge{
		{Code: "FRT", Name: "Freight", Amount: decimal.NewFromFloat(145.00)},
		{Code: "FSC", Name: "Fuel Surcharge", Amount: decimal.NewFromFloat(17.50)},
	}, invoice, "ap-clerk")
	require.NoError(t, err)

	assert.True(t, comparison.QuotedTotal.Equal(decimal.NewFromFloat(150.00)))
	assert.True(t, comparison.ActualTotal.Equal(decimal.NewFromFloat(162.50)))
	assert.True(t, comparison.Variance.Equal(decimal.NewFromFloat(12.50)))
	assert.True(t, comparison.VariancePercent.Equal(decimal.NewFromFloat(8.33)))
	assert.Equal(t, "INV-5001", comparison.InvoiceNumber)

	// merged actuals live next to the quoted fields
	require.NotNil(t, s.ManualRates[0].ActualCharge)
	assert.True(t, s.ManualRates[0].Charge.Equal(decimal.NewFromFloat(135.00)))
	assert.Len(t, s.ActualRates, 2)

	// audit entry is keyed by invoice number
	require.NotEmpty(t, s.StatusHistory)
	assert.Equal(t, "ap_invoice_applied:INV-5001", s.StatusHistory[len(s.StatusHistory)-1].Key)

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeActualCostsApplied, events[0].EventType())
}

func TestApplyActualCostsCancelledShipment(t *testing.T) {
	for _, status := range []Status{StatusCanceled, StatusVoid} {
		t.Run(string(status), func(t *testing.T) {
			s := newTestShipment(t)
			s.Status = status

			_, err := s.ApplyActualCosts([]ActualCharge{
				{Code: "FRT", Name: "Freight", Amount: decimal.NewFromFloat(10.00)},
			}, InvoiceRef{Number: "INV-5002"}, "ap-clerk")

			require.Error(t, err)
			domainErr, ok := err.(*shared.DomainError)
			require.True(t, ok)
			assert.Equal(t, "CANCELLED_SHIPMENT", domainErr.Code)
			assert.Empty(t, s.StatusHistory)
		})
	}
}

func TestApplyActualCostsZeroQuoted(t *testing.T) {
	s := newTestShipment(t)

	comparison, err := s.ApplyActualCosts([]ActualCharge{
		{Code: "FRT", Name: "Freight", Amount: decimal.NewFromFloat(50.00)},
	}, InvoiceRef{Number: "INV-5003"}, "ap-clerk")
	require.NoError(t, err)

	assert.True(t, comparison.QuotedTotal.IsZero())
	assert.True(t, comparison.Variance.Equal(decimal.NewFromFloat(50.00)))
	assert.True(t, comparison.VariancePercent.IsZero())
}

func TestUnapplyActualCostsIdempotent(t *testing.T) {
	s := newTestShipment(t)
	s.ManualRates = RateBreakdown{
		{Code: "FRT", Name: "Freight", Charge: decimal.NewFromFloat(100.00), Currency: valueobject.USD},
	}
	invoice := InvoiceRef{Number: "INV-6001"}

	_, err := s.ApplyActualCosts([]ActualCharge{
		{Code: "FRT", Name: "Freight", Amount: decimal.NewFromFloat(110.00)},
	}, invoice, "ap-clerk")
	require.NoError(t, err)

	affected, err := s.UnapplyActualCosts([]string{"FRT"}, invoice, "ap-clerk")
	require.NoError(t, err)
	assert.Equal(t, []string{"FRT"}, affected)

	rates := s.ManualRates.Clone()
	history := len(s.StatusHistory)
	version := s.GetVersion()

	affected, err = s.UnapplyActualCosts([]string{"FRT"}, invoice, "ap-clerk")
	require.NoError(t, err)
	assert.Empty(t, affected)
	assert.Equal(t, rates, s.ManualRates)
	assert.Equal(t, history, len(s.StatusHistory))
	assert.Equal(t, version, s.GetVersion())
}

func TestTransitionInvoiceStatus(t *testing.T) {
	s := newTestShipment(t)

	err := s.TransitionInvoiceStatus(InvoiceStatus("bogus"), "system", true, nil)
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INVOICE_STATUS", domainErr.Code)
	assert.Equal(t, InvoiceStatusUninvoiced, s.InvoiceStatus)

	invoice := &InvoiceRef{Number: "INV-7001", Date: time.Now()}
	require.NoError(t, s.TransitionInvoiceStatus(InvoiceStatusProcessing, "system", true, nil))
	require.NoError(t, s.TransitionInvoiceStatus(InvoiceStatusReadyToInvoice, "system", true, invoice))

	assert.Equal(t, InvoiceStatusReadyToInvoice, s.InvoiceStatus)
	assert.NotNil(t, s.ProcessingAt)
	assert.NotNil(t, s.ReadyToInvoiceAt)

	require.Len(t, s.InvoiceStatusHistory, 2)
	last := s.InvoiceStatusHistory[1]
	assert.Equal(t, InvoiceStatusProcessing, last.FromStatus)
	assert.Equal(t, InvoiceStatusReadyToInvoice, last.ToStatus)
	assert.Equal(t, "Ready To Invoice", last.Label)
	assert.True(t, last.Automatic)
	require.NotNil(t, last.Invoice)
	assert.Equal(t, "INV-7001", last.Invoice.Number)
}

func TestIsApprovedChecksAllLegacyFields(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Shipment)
		expected bool
	}{
		{"none set", func(s *Shipment) {}, false},
		{"charge status", func(s *Shipment) { s.ChargeStatus = "approved" }, true},
		{"approval status", func(s *Shipment) { s.ApprovalStatus = "Approved" }, true},
		{"billing status", func(s *Shipment) { s.BillingStatus = "APPROVED" }, true},
		{"other value", func(s *Shipment) { s.ChargeStatus = "rejected" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestShipment(t)
			tt.mutate(s)
			assert.Equal(t, tt.expected, s.IsApproved())
		})
	}
}

func TestOverrideApproval(t *testing.T) {
	s := newTestShipment(t)
	approvedAt := time.Now().Add(-time.Hour)
	s.ApprovalStatus = "approved"
	s.Approver = "finance-manager"
	s.ApprovedAt = &approvedAt
	s.InvoiceStatus = InvoiceStatusProcessed
	s.FinalizedCharges = RateBreakdown{{Code: "FRT", Charge: decimal.NewFromFloat(100.00)}}

	err := s.OverrideApproval("carrier rebilled freight", OverrideTypeRebill, "admin")
	require.NoError(t, err)

	// approval state cleared
	assert.False(t, s.IsApproved())
	assert.Empty(t, s.Approver)
	assert.Nil(t, s.ApprovedAt)
	assert.Nil(t, s.FinalizedCharges)
	assert.Equal(t, InvoiceStatusPending, s.InvoiceStatus)

	// snapshot captured for reversal
	require.NotNil(t, s.ChargeOverride)
	assert.Equal(t, "approved", s.ChargeOverride.PriorApprovalStatus)
	assert.Equal(t, "finance-manager", s.ChargeOverride.PriorApprover)
	assert.Equal(t, InvoiceStatusProcessed, s.ChargeOverride.PriorInvoiceStatus)
	require.Len(t, s.ChargeOverride.PriorFinalizedCharges, 1)
	assert.Equal(t, OverrideTypeRebill, s.ChargeOverride.Type)
}

func TestOverrideApprovalRejections(t *testing.T) {
	t.Run("not approved", func(t *testing.T) {
		s := newTestShipment(t)
		err := s.OverrideApproval("reason", OverrideTypeCorrection, "admin")
		require.Error(t, err)
		assert.Equal(t, "NOT_APPROVED", err.(*shared.DomainError).Code)
	})

	t.Run("missing reason", func(t *testing.T) {
		s := newTestShipment(t)
		s.ChargeStatus = "approved"
		err := s.OverrideApproval("", OverrideTypeCorrection, "admin")
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", err.(*shared.DomainError).Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		s := newTestShipment(t)
		s.ChargeStatus = "approved"
		err := s.OverrideApproval("reason", OverrideType("bogus"), "admin")
		require.Error(t, err)
		assert.Equal(t, "INVALID_OVERRIDE_TYPE", err.(*shared.DomainError).Code)
	})
}
