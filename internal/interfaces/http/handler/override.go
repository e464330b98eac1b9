package handler

import (
	"context"

	apinvoiceapp "github.com/freightdesk/backend/internal/application/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/freightdesk/backend/internal/interfaces/http/dto"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ChargeOverrider reverses approved charge sets back to pending review
type ChargeOverrider interface {
	Override(ctx context.Context, references []string, reason string, overrideType shipment.OverrideType, actor string) (*apinvoiceapp.OverrideResult, error)
}

// OverrideHandler exposes batch charge-approval overrides
type OverrideHandler struct {
	BaseHandler
	overrides ChargeOverrider
}

// NewOverrideHandler creates a new OverrideHandler
func NewOverrideHandler(overrides ChargeOverrider) *OverrideHandler {
	return &OverrideHandler{overrides: overrides}
}

// OverrideRequest reverses the charge approval of one or more shipments
// @name HandlerOverrideRequest
type OverrideRequest struct {
	References []string `json:"references" binding:"required,min=1"`
	Reason     string   `json:"reason" binding:"required"`
	Type       string   `json:"type" binding:"required"`
}

// Override godoc
// @ID           overrideCharges
// @Summary      Override charge approvals
// @Description  Reverses approved charge sets for the referenced shipments. Partial success is expected; per-shipment outcomes are reported.
// @Tags         ap-overrides
// @Accept       json
// @Produce      json
// @Param        request body OverrideRequest true "Override parameters"
// @Success      200 {object} APIResponse[apinvoiceapp.OverrideResult]
// @Failure      400 {object} ErrorResponse
// @Router       /ap/overrides [post]
func (h *OverrideHandler) Override(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	overrideType := shipment.OverrideType(req.Type)
	if !overrideType.IsValid() {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "type", Message: "Must be one of: charge_dispute, rebill, correction"},
		})
		return
	}

	result, err := h.overrides.Override(c.Request.Context(), req.References, req.Reason, overrideType, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
