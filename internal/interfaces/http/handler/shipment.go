package handler

import (
	"context"

	apinvoiceapp "github.com/freightdesk/backend/internal/application/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/freightdesk/backend/internal/interfaces/http/dto"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ShipmentLocator resolves a shipment reference (internal ID or external code)
type ShipmentLocator interface {
	Locate(ctx context.Context, reference string) (*shipment.Shipment, error)
}

// CostApplier applies and unapplies carrier-invoiced costs
type CostApplier interface {
	ApplyCosts(ctx context.Context, reference string, charges []shipment.ActualCharge, invoice shipment.InvoiceRef, actor string) (*apinvoiceapp.ApplyCostsResult, error)
	UnapplyCosts(ctx context.Context, reference string, charges []string, invoice shipment.InvoiceRef, actor string) (*apinvoiceapp.UnapplyCostsResult, error)
}

// ShipmentHandler exposes the AP view of shipments and the cost
// apply/unapply operations
type ShipmentHandler struct {
	BaseHandler
	locator ShipmentLocator
	costs   CostApplier
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(locator ShipmentLocator, costs CostApplier) *ShipmentHandler {
	return &ShipmentHandler{
		locator: locator,
		costs:   costs,
	}
}

// Get godoc
// @ID           getShipment
// @Summary      Get a shipment
// @Description  Resolves a shipment by internal ID or external shipment code
// @Tags         shipments
// @Produce      json
// @Param        ref path string true "Shipment ID or code"
// @Success      200 {object} APIResponse[ShipmentResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /shipments/{ref} [get]
func (h *ShipmentHandler) Get(c *gin.Context) {
	reference := c.Param("ref")
	if reference == "" {
		h.BadRequest(c, "Shipment reference is required")
		return
	}

	sh, err := h.locator.Locate(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toShipmentResponse(sh))
}

// ApplyCosts godoc
// @ID           applyShipmentCosts
// @Summary      Apply invoiced costs
// @Description  Applies carrier-invoiced charges to a shipment and returns the cost comparison
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        ref path string true "Shipment ID or code"
// @Param        request body ApplyCostsRequest true "Invoiced charges"
// @Success      200 {object} APIResponse[apinvoiceapp.ApplyCostsResult]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shipments/{ref}/costs [post]
func (h *ShipmentHandler) ApplyCosts(c *gin.Context) {
	reference := c.Param("ref")
	if reference == "" {
		h.BadRequest(c, "Shipment reference is required")
		return
	}

	var req ApplyCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	invoiceDate, ok := parseInvoiceDate(req.InvoiceDate)
	if !ok {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "invoice_date", Message: "Invalid date format, expected YYYY-MM-DD"},
		})
		return
	}

	invoice := shipment.InvoiceRef{Number: req.InvoiceNumber, Date: invoiceDate}
	result, err := h.costs.ApplyCosts(c.Request.Context(), reference, toActualCharges(req.Charges), invoice, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UnapplyCosts godoc
// @ID           unapplyShipmentCosts
// @Summary      Unapply invoiced costs
// @Description  Strips applied actual-cost values for the named charge codes
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        ref path string true "Shipment ID or code"
// @Param        request body UnapplyCostsRequest true "Charge codes to unapply"
// @Success      200 {object} APIResponse[apinvoiceapp.UnapplyCostsResult]
// @Failure      404 {object} ErrorResponse
// @Router       /shipments/{ref}/costs [delete]
func (h *ShipmentHandler) UnapplyCosts(c *gin.Context) {
	reference := c.Param("ref")
	if reference == "" {
		h.BadRequest(c, "Shipment reference is required")
		return
	}

	var req UnapplyCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	invoiceDate, ok := parseInvoiceDate(req.InvoiceDate)
	if !ok {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "invoice_date", Message: "Invalid date format, expected YYYY-MM-DD"},
		})
		return
	}

	invoice := shipment.InvoiceRef{Number: req.InvoiceNumber, Date: invoiceDate}
	result, err := h.costs.UnapplyCosts(c.Request.Context(), reference, req.Charges, invoice, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
