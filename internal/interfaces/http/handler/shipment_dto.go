package handler

import (
	"time"

	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

// ChargeRequest is one invoiced charge line in an apply-costs request
// @name HandlerChargeRequest
type ChargeRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency"`
}

// ApplyCostsRequest applies carrier-invoiced charges to a shipment
// @name HandlerApplyCostsRequest
type ApplyCostsRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required"`
	InvoiceDate   string          `json:"invoice_date" binding:"required"`
	Charges       []ChargeRequest `json:"charges" binding:"required,min=1,dive"`
}

// UnapplyCostsRequest strips applied actual costs for the named charge codes
// @name HandlerUnapplyCostsRequest
type UnapplyCostsRequest struct {
	InvoiceNumber string   `json:"invoice_number" binding:"required"`
	InvoiceDate   string   `json:"invoice_date"`
	Charges       []string `json:"charges" binding:"required,min=1"`
}

// ShipmentResponse is the AP view of a shipment
// @name HandlerShipmentResponse
type ShipmentResponse struct {
	ID                   string                           `json:"id"`
	ShipmentCode         string                           `json:"shipment_code"`
	CarrierName          string                           `json:"carrier_name"`
	Currency             string                           `json:"currency"`
	Status               string                           `json:"status"`
	InvoiceStatus        string                           `json:"invoice_status"`
	Approved             bool                             `json:"approved"`
	QuotedTotal          decimal.Decimal                  `json:"quoted_total"`
	QuotedRates          shipment.RateBreakdown           `json:"quoted_rates"`
	ActualRates          shipment.RateBreakdown           `json:"actual_rates,omitempty"`
	CostComparison       *shipment.CostComparison         `json:"cost_comparison,omitempty"`
	ChargeOverride       *shipment.ChargeOverride         `json:"charge_override,omitempty"`
	InvoiceStatusHistory []shipment.InvoiceStatusTransition `json:"invoice_status_history,omitempty"`
	Version              int                              `json:"version"`
	CreatedAt            time.Time                        `json:"created_at"`
	UpdatedAt            time.Time                        `json:"updated_at"`
}

func toShipmentResponse(sh *shipment.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:                   sh.ID.String(),
		ShipmentCode:         sh.ShipmentCode,
		CarrierName:          sh.CarrierName,
		Currency:             string(sh.Currency),
		Status:               sh.Status.String(),
		InvoiceStatus:        sh.InvoiceStatus.String(),
		Approved:             sh.IsApproved(),
		QuotedTotal:          sh.QuotedTotal(),
		QuotedRates:          sh.QuotedRates(),
		ActualRates:          sh.ActualRates,
		CostComparison:       sh.CostComparison,
		ChargeOverride:       sh.ChargeOverride,
		InvoiceStatusHistory: sh.InvoiceStatusHistory,
		Version:              sh.GetVersion(),
		CreatedAt:            sh.CreatedAt,
		UpdatedAt:            sh.UpdatedAt,
	}
}

// invoiceDateLayouts are the accepted formats for invoice dates, tried in order
var invoiceDateLayouts = []string{"2006-01-02", time.RFC3339}

func parseInvoiceDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toActualCharges(charges []ChargeRequest) []shipment.ActualCharge {
	out := make([]shipment.ActualCharge, 0, len(charges))
	for _, ch := range charges {
		out = append(out, shipment.ActualCharge{
			Code:     ch.Code,
			Name:     ch.Name,
			Amount:   toDecimal(ch.Amount),
			Currency: valueObjectCurrency(ch.Currency),
		})
	}
	return out
}
