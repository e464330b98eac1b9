package handler

import (
	"context"

	apinvoiceapp "github.com/freightdesk/backend/internal/application/apinvoice"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BatchReconciler reconciles an upload's extraction result against stored
// shipments
type BatchReconciler interface {
	Reconcile(ctx context.Context, uploadID uuid.UUID, apply bool, actor string) (*apinvoiceapp.ReconcileResponse, error)
}

// ReconcileHandler exposes reconciliation runs over processed uploads
type ReconcileHandler struct {
	BaseHandler
	reconciler BatchReconciler
}

// NewReconcileHandler creates a new ReconcileHandler
func NewReconcileHandler(reconciler BatchReconciler) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler}
}

// ReconcileRequest triggers a reconciliation run
// @name HandlerReconcileRequest
type ReconcileRequest struct {
	UploadID string `json:"upload_id" binding:"required,uuid"`
	// Apply commits balanced and exception verdicts; false is a dry-run preview
	Apply bool `json:"apply"`
}

// Reconcile godoc
// @ID           reconcileUpload
// @Summary      Reconcile an upload
// @Description  Matches extracted invoice records against shipments and classifies each as balanced or exception. With apply set, verdicts are committed.
// @Tags         ap-reconcile
// @Accept       json
// @Produce      json
// @Param        request body ReconcileRequest true "Reconciliation run parameters"
// @Success      200 {object} APIResponse[apinvoiceapp.ReconcileResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /ap/reconcile [post]
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	uploadID, err := uuid.Parse(req.UploadID)
	if err != nil {
		h.BadRequest(c, "Invalid upload ID")
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), uploadID, req.Apply, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
