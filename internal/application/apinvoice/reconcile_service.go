package apinvoice

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplyOutcome reports the commit step for one reconciled shipment
type ApplyOutcome struct {
	ShipmentRef string `json:"shipment_ref"`
	Success     bool   `json:"success"`
	Reason      string `json:"reason,omitempty"`
}

// ReconcileResponse is the result of one reconciliation run. When Applied is
// false the run was a dry-run preview and no shipment was mutated.
type ReconcileResponse struct {
	UploadID     uuid.UUID              `json:"upload_id"`
	Applied      bool                   `json:"applied"`
	Summary      apinvoice.BatchSummary `json:"summary"`
	ApplyResults []ApplyOutcome         `json:"apply_results,omitempty"`
}

// ReconcileService reconciles an upload's extraction result against stored
// shipments. Preview and committing runs share the same matching and
// classification logic; only the apply flag decides whether verdicts are
// persisted.
type ReconcileService struct {
	uploads    apinvoice.UploadRepository
	results    apinvoice.ExtractionResultRepository
	matcher    *apinvoice.Matcher
	reconciler *apinvoice.Reconciler
	costs      *CostService
	logger     *zap.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(
	uploads apinvoice.UploadRepository,
	results apinvoice.ExtractionResultRepository,
	matcher *apinvoice.Matcher,
	reconciler *apinvoice.Reconciler,
	costs *CostService,
	logger *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		uploads:    uploads,
		results:    results,
		matcher:    matcher,
		reconciler: reconciler,
		costs:      costs,
		logger:     logger,
	}
}

// Reconcile matches and classifies every extracted shipment record of the
// upload. With apply set, balanced and exception verdicts are committed:
// actual costs are applied and the invoice status transitions to
// ready_to_invoice or exception. One shipment's commit failure never aborts
// the others.
func (s *ReconcileService) Reconcile(ctx context.Context, uploadID uuid.UUID, apply bool, actor string) (*ReconcileResponse, error) {
	result, err := s.results.FindByUploadID(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	// re-match against current shipment state rather than trusting the
	// matches stored at extraction time
	pairs, err := s.matcher.Match(ctx, result.Records)
	if err != nil {
		return nil, err
	}

	summary := s.reconciler.ReconcileAll(pairs)
	response := &ReconcileResponse{UploadID: uploadID, Summary: summary}
	if !apply {
		return response, nil
	}

	response.Applied = true
	response.ApplyResults = make([]ApplyOutcome, 0, len(pairs))
	for i, pair := range pairs {
		outcome := summary.Outcomes[i]
		if outcome.Classification == apinvoice.ClassificationError {
			continue
		}
		response.ApplyResults = append(response.ApplyResults, s.commit(ctx, pair, outcome, actor))
	}

	upload, err := s.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	upload.MarkReconciled()
	if err := s.uploads.Save(ctx, upload); err != nil {
		return nil, err
	}

	s.logger.Info("reconciliation applied",
		zap.String("upload_id", uploadID.String()),
		zap.Int("balanced", summary.Balanced),
		zap.Int("exceptions", summary.Exceptions),
		zap.Int("errors", summary.Errors))
	return response, nil
}

func (s *ReconcileService) commit(ctx context.Context, pair apinvoice.MatchedPair, outcome apinvoice.ReconciliationOutcome, actor string) ApplyOutcome {
	invoice := pair.Record.InvoiceRef()

	if _, err := s.costs.ApplyCosts(ctx, pair.ShipmentRef, commitCharges(pair.Record), invoice, actor); err != nil {
		return ApplyOutcome{ShipmentRef: pair.ShipmentRef, Reason: failureReason(err)}
	}

	target := shipment.InvoiceStatusReadyToInvoice
	if outcome.Classification == apinvoice.ClassificationException {
		target = shipment.InvoiceStatusException
	}
	if err := s.transition(ctx, pair.ShipmentRef, target, actor, &invoice); err != nil {
		return ApplyOutcome{ShipmentRef: pair.ShipmentRef, Reason: failureReason(err)}
	}

	return ApplyOutcome{ShipmentRef: pair.ShipmentRef, Success: true}
}

func (s *ReconcileService) transition(ctx context.Context, reference string, target shipment.InvoiceStatus, actor string, invoice *shipment.InvoiceRef) error {
	sh, err := s.costs.locator.Locate(ctx, reference)
	if err != nil {
		return err
	}

	lock, err := s.costs.locker.Acquire(ctx, sh.ShipmentCode)
	if err != nil {
		return err
	}
	defer s.costs.releaseLock(ctx, lock, sh.ShipmentCode)

	expectedVersion := sh.GetVersion()
	if err := sh.TransitionInvoiceStatus(target, actor, true, invoice); err != nil {
		return err
	}
	if err := s.costs.shipments.SaveWithLock(ctx, sh, expectedVersion); err != nil {
		return err
	}
	s.costs.publishEvents(ctx, sh)
	return nil
}

// commitCharges returns the record's charge detail, falling back to a single
// freight line carrying the invoice total when no breakdown was extracted.
func commitCharges(record apinvoice.ExtractedRecord) []shipment.ActualCharge {
	if len(record.Charges) > 0 {
		return record.Charges
	}
	return []shipment.ActualCharge{{
		Code:   "FRT",
		Name:   "Freight",
		Amount: record.Total,
	}}
}
